package redisx

import "time"

const (
	// Change feed per collection: records:{collection}
	KeyChangeChannel = "records:%s"

	// Admin session token: session:{token} -> email
	KeySession = "session:%s"

	// Dedup newsletter send jobs: dedup:mailer:{event_id}
	KeyMailDedup = "dedup:mailer:%s"

	// Per-issue sent counter: newsletter:sent:{issue_id}
	KeyNewsletterSent = "newsletter:sent:%s"
)

var (
	TTLSession        = 24 * time.Hour
	TTLMailDedup      = 48 * time.Hour
	TTLNewsletterSent = 7 * 24 * time.Hour
)
