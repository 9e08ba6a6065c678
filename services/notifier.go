package services

import (
	"sports-data-service/database"
)

// MatchCreatedNotifier 比赛创建事件的通知能力，由路由层在创建成功后调用
type MatchCreatedNotifier interface {
	BroadcastMatchCreated(match *database.Match)
}

// MultiNotifier 将事件扇出到多个通知器
type MultiNotifier struct {
	notifiers []MatchCreatedNotifier
}

func NewMultiNotifier(notifiers ...MatchCreatedNotifier) *MultiNotifier {
	return &MultiNotifier{notifiers: notifiers}
}

func (m *MultiNotifier) BroadcastMatchCreated(match *database.Match) {
	for _, n := range m.notifiers {
		n.BroadcastMatchCreated(match)
	}
}
