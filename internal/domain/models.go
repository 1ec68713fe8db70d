package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
)

type Booking struct {
	ID        string   `db:"id" json:"id"`
	Name      string   `db:"name" json:"name"`
	Surname   string   `db:"surname" json:"surname"`
	Phone     string   `db:"phone" json:"phone"`
	Email     string   `db:"email" json:"email,omitempty"`
	Date      string   `db:"date" json:"date"` // YYYY-MM-DD
	TimeSlot  TimeSlot `db:"time_slot" json:"time_slot"`
	Notes     string   `db:"notes" json:"notes,omitempty"`
	Status    Status   `db:"status" json:"status"`
	CreatedAt string   `db:"created_at" json:"created_at"`
}

type ContactMessage struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Email     string `db:"email" json:"email"`
	Phone     string `db:"phone" json:"phone,omitempty"`
	Subject   string `db:"subject" json:"subject,omitempty"`
	Message   string `db:"message" json:"message"`
	Read      bool   `db:"is_read" json:"read"`
	Archived  bool   `db:"is_archived" json:"archived"`
	CreatedAt string `db:"created_at" json:"created_at"`
}

type Product struct {
	ID          string          `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description,omitempty"`
	Price       decimal.Decimal `db:"price" json:"price"`
	ImageURL    string          `db:"image_url" json:"image_url,omitempty"`
	Category    string          `db:"category" json:"category,omitempty"`
	InStock     bool            `db:"in_stock" json:"in_stock"`
	Featured    bool            `db:"featured" json:"featured"`
	CreatedAt   string          `db:"created_at" json:"created_at"`
}

// ProductPatch is a partial product update; nil fields are left untouched.
type ProductPatch struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	ImageURL    *string          `json:"image_url"`
	Category    *string          `json:"category"`
	InStock     *bool            `json:"in_stock"`
	Featured    *bool            `json:"featured"`
}

func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil && p.ImageURL == nil &&
		p.Category == nil && p.InStock == nil && p.Featured == nil
}

type Project struct {
	ID             string     `db:"id" json:"id"`
	Title          string     `db:"title" json:"title"`
	Description    string     `db:"description" json:"description"`
	ImageURL       string     `db:"image_url" json:"image_url,omitempty"`
	GalleryImages  StringList `db:"gallery_json" json:"gallery_images"`
	Client         string     `db:"client" json:"client,omitempty"`
	Category       string     `db:"category" json:"category,omitempty"`
	CompletionDate string     `db:"completion_date" json:"completion_date,omitempty"`
	Featured       bool       `db:"featured" json:"featured"`
	CreatedAt      string     `db:"created_at" json:"created_at"`
}

type ProjectPatch struct {
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	ImageURL       *string `json:"image_url"`
	Client         *string `json:"client"`
	Category       *string `json:"category"`
	CompletionDate *string `json:"completion_date"`
	Featured       *bool   `json:"featured"`
}

func (p ProjectPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.ImageURL == nil && p.Client == nil &&
		p.Category == nil && p.CompletionDate == nil && p.Featured == nil
}

type AdminUser struct {
	ID           string  `db:"id" json:"id"`
	Username     string  `db:"username" json:"username"`
	PasswordHash string  `db:"password_hash" json:"-"`
	Email        string  `db:"email" json:"email,omitempty"`
	CreatedAt    string  `db:"created_at" json:"created_at"`
	LastLogin    *string `db:"last_login" json:"last_login,omitempty"`
	Active       bool    `db:"active" json:"active"`
}

// Session binds an opaque token to an admin until ExpiresAt (repos.TimeLayout, UTC).
type Session struct {
	Token     string `db:"token" json:"-"`
	AdminID   string `db:"admin_id" json:"admin_id"`
	CreatedAt string `db:"created_at" json:"created_at"`
	ExpiresAt string `db:"expires_at" json:"expires_at"`
}

// StringList is stored as a JSON array in a text column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return errors.New("string list: unsupported column type")
	}
	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	if out == nil {
		out = []string{}
	}
	*l = out
	return nil
}
