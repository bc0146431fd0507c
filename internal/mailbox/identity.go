package mailbox

import "fmt"

// Identity is the key used for selection and membership tests.
//
// When the service supplies an id it is used alone. Otherwise the composite
// (subject, to, from, date_of_send or scheduled_date) is used, which means two
// distinct messages sharing all four values cannot be told apart.
type Identity struct {
	ID      string
	Subject string
	To      string
	From    string
	Date    string
}

// IdentityOf derives the Identity of m.
func IdentityOf(m Message) Identity {
	if m.ID != "" {
		return Identity{ID: m.ID}
	}
	date := m.SentAt
	if date == "" {
		date = m.ScheduledFor
	}
	return Identity{
		Subject: m.Subject,
		To:      m.To,
		From:    m.From,
		Date:    date,
	}
}

// IsZero reports whether the identity was never set.
func (id Identity) IsZero() bool {
	return id == Identity{}
}

// Matches reports whether m carries this identity.
func (id Identity) Matches(m Message) bool {
	return !id.IsZero() && IdentityOf(m) == id
}

func (id Identity) String() string {
	if id.ID != "" {
		return id.ID
	}
	return fmt.Sprintf("(%q,%q,%q,%q)", id.Subject, id.To, id.From, id.Date)
}

// Find returns the first message in msgs carrying id.
func Find(msgs []Message, id Identity) (Message, bool) {
	for _, m := range msgs {
		if id.Matches(m) {
			return m, true
		}
	}
	return Message{}, false
}

// Contains reports whether any message in msgs carries id.
func Contains(msgs []Message, id Identity) bool {
	_, ok := Find(msgs, id)
	return ok
}
