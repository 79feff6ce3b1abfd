package patient

import (
	"encoding/json"
	"time"
)

// Patient is a single record held by the Record Store. ID and CreatedAt are
// assigned by the store and never change afterwards.
type Patient struct {
	ID        int64     `json:"id" bson:"id"`
	Name      string    `json:"name" bson:"name"`
	Age       int       `json:"age" bson:"age"`
	Village   string    `json:"village" bson:"village"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// MarshalJSON leaves out zero timestamps. Records imported from the legacy
// file format have no createdAt.
func (p Patient) MarshalJSON() ([]byte, error) {
	type plain Patient
	out := struct {
		plain
		CreatedAt *time.Time `json:"createdAt,omitempty"`
		UpdatedAt *time.Time `json:"updatedAt,omitempty"`
	}{plain: plain(p)}
	if !p.CreatedAt.IsZero() {
		out.CreatedAt = &p.CreatedAt
	}
	if !p.UpdatedAt.IsZero() {
		out.UpdatedAt = &p.UpdatedAt
	}
	return json.Marshal(out)
}

// Fields are the editable parts of a Patient after validation.
type Fields struct {
	Name    string
	Age     int
	Village string
}

// Apply copies the editable fields onto p.
func (f Fields) Apply(p *Patient) {
	p.Name = f.Name
	p.Age = f.Age
	p.Village = f.Village
}

// Input is the request body accepted for create and update.
type Input struct {
	Name    string `json:"name"`
	Age     Age    `json:"age"`
	Village string `json:"village"`
}
