package middleware

import tele "gopkg.in/telebot.v4"

const statsKey = "send_stats"

type sendStats struct {
	messages int
	keyboard bool
}

// countingContext records every successful send of the handler it wraps.
type countingContext struct {
	tele.Context
	stats *sendStats
}

func (c countingContext) record(err error, n int, opts []any) error {
	if err == nil {
		c.stats.messages += n
		c.stats.keyboard = c.stats.keyboard || carriesMarkup(opts)
	}
	return err
}

func (c countingContext) Send(what any, opts ...any) error {
	return c.record(c.Context.Send(what, opts...), 1, opts)
}

func (c countingContext) Reply(what any, opts ...any) error {
	return c.record(c.Context.Reply(what, opts...), 1, opts)
}

// SendAlbum counts each album item as one message.
func (c countingContext) SendAlbum(a tele.Album, opts ...any) error {
	return c.record(c.Context.SendAlbum(a, opts...), len(a), opts)
}

func carriesMarkup(opts []any) bool {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.ReplyMarkup:
			if v != nil {
				return true
			}
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return true
			}
		}
	}
	return false
}

// MessageMetricsMiddleware counts the messages a handler sends and whether any
// of them carried a keyboard. Read the result with GetCounters.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		stats := &sendStats{}
		c.Set(statsKey, stats)
		return next(countingContext{Context: c, stats: stats})
	}
}

// GetCounters returns the message count and keyboard flag of the update.
func GetCounters(c tele.Context) (messages int, keyboard bool) {
	if s, ok := c.Get(statsKey).(*sendStats); ok {
		return s.messages, s.keyboard
	}
	return 0, false
}
