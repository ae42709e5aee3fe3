package domain

import "time"

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentSuccess PaymentStatus = "success"
	PaymentFailed  PaymentStatus = "failed"
)

// Registration is a participant's entry for one competition.
//
// RegistrationID is the human-readable code printed on the receipt. It is
// assigned on the first transition to "success", never at creation, so
// abandoned payment attempts do not consume codes.
type Registration struct {
	ID             int64  `gorm:"primaryKey" json:"id"`
	RegistrationID string `gorm:"type:varchar(32);uniqueIndex:idx_registrations_reg_id,where:registration_id <> ''" json:"registration_id,omitempty"`

	Name    string `gorm:"type:varchar(200);not null" json:"name"`
	Email   string `gorm:"type:varchar(200);not null;index" json:"email"`
	Mobile  string `gorm:"type:varchar(20);not null;index" json:"mobile"`
	Address string `gorm:"type:text;not null" json:"address"`
	State   string `gorm:"type:varchar(100);not null" json:"state"`
	Pin     string `gorm:"type:varchar(10);not null" json:"pin"`
	// National id, stored with internal whitespace stripped.
	AadhaarNumber string `gorm:"type:varchar(20);not null;index" json:"aadhaar_number"`
	WorkPlace     string `gorm:"type:varchar(200)" json:"work_place,omitempty"`

	CompetitionID   int64  `gorm:"not null;index" json:"competition_id"`
	CompetitionName string `gorm:"type:varchar(200)" json:"competition_name"`

	PassportNumber  string `gorm:"type:varchar(30)" json:"passport_number,omitempty"`
	PassportFileURL string `gorm:"type:text" json:"passport_file_url,omitempty"`

	AcceptedTerms bool          `gorm:"not null" json:"accepted_terms"`
	Amount        float64       `gorm:"not null" json:"amount"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(10);not null;default:'pending';index" json:"payment_status"`
	// Gateway payment-request id while pending, actual payment id after success.
	PaymentID string `gorm:"type:varchar(64)" json:"payment_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Competition *Competition `json:"competition,omitempty" gorm:"foreignKey:CompetitionID"`
}

func (Registration) TableName() string { return "registrations" }
