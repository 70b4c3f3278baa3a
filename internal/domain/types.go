package domain

import "time"

type Contact struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Phone   string    `json:"phone"`
	AddedAt time.Time `json:"added_at"`
}

// Photo is a gallery image. StorageKey and MimeType never leave the server.
type Photo struct {
	ID         string     `json:"id"`
	URL        string     `json:"url"`
	Tags       []string   `json:"tags"`
	Date       *time.Time `json:"date,omitempty"`
	StorageKey string     `json:"-"`
	MimeType   string     `json:"-"`
}

type Direction string

const (
	DirectionSent     Direction = "sent"
	DirectionReceived Direction = "received"
)

type ShareStatus string

const (
	StatusUnread ShareStatus = "unread"
	StatusRead   ShareStatus = "read"
)

// Share records one hand-off of photos between the local user and a contact.
// Only Status may change after creation.
type Share struct {
	ID         string      `json:"id"`
	Direction  Direction   `json:"type"`
	From       string      `json:"from"`
	To         string      `json:"to"`
	ToPhone    string      `json:"to_phone,omitempty"`
	PhotoIDs   []string    `json:"photo_ids"`
	PhotoCount int         `json:"photo_count"`
	CreatedAt  time.Time   `json:"shared_at"`
	Status     ShareStatus `json:"status"`
	Photos     []Photo     `json:"photos,omitempty"`
}

// CounterpartyName is the recipient of a sent share or the sender of a
// received one.
func (s *Share) CounterpartyName() string {
	if s.Direction == DirectionReceived {
		return s.From
	}
	return s.To
}

// CounterpartyPhone is only known for sent shares.
func (s *Share) CounterpartyPhone() string {
	if s.Direction == DirectionSent {
		return s.ToPhone
	}
	return ""
}

// Count returns PhotoCount, falling back to the number of ids for records
// that carry only one of the two.
func (s *Share) Count() int {
	if s.PhotoCount > 0 {
		return s.PhotoCount
	}
	return len(s.PhotoIDs)
}

type Profile struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// DefaultProfileName is used until the user sets their own name.
const DefaultProfileName = "You"

// Stats is a point-in-time count of gallery records.
type Stats struct {
	Contacts       int
	Photos         int
	SentShares     int
	ReceivedShares int
	UnreadShares   int
}
