// Package content handles single-shot visitor submissions: contact messages,
// testimonials, newsletter signups, plus the portfolio catalogue entries the
// admin curates.
package content

import "time"

const (
	ContactsCollection     = "contacts"
	TestimonialsCollection = "testimonials"
	NewsletterCollection   = "newsletter"
	PortfolioCollection    = "portfolio"
)

type ContactMessage struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Service   string    `json:"service"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	Read      bool      `json:"read"`
}

// Testimonial is created unapproved and only shows publicly once an admin
// flips Approved.
type Testimonial struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Company   string    `json:"company"`
	Content   string    `json:"content"`
	Rating    int       `json:"rating"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Approved  bool      `json:"approved"`
}

// NewsletterSubscriber entries are append-only.
type NewsletterSubscriber struct {
	ID           string    `json:"id,omitempty"`
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribedAt"`
}

type PortfolioProject struct {
	ID          string    `json:"id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Images      []string  `json:"images"`
	CreatedAt   time.Time `json:"createdAt"`
}
