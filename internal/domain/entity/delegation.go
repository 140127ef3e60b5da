package entity

import "time"

// Delegation represents a business trip owned by one employee. It owns
// zero or more expenses and documents; both are removed when the
// delegation is deleted.
type Delegation struct {
	ID         int64      `json:"id"`
	EmployeeID int64      `json:"employee_id"`
	StartDate  time.Time  `json:"start_date"`
	EndDate    time.Time  `json:"end_date"`
	Status     string     `json:"status"`
	Country    string     `json:"country,omitempty"`
	City       string     `json:"city,omitempty"`
	Name       string     `json:"name,omitempty"`
	Purpose    string     `json:"purpose,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`
	ExportDate *time.Time `json:"export_date,omitempty"`
}

// Document is attachment metadata tied to a delegation, optionally to a
// single expense. File contents live outside this system.
type Document struct {
	ID           int64     `json:"id"`
	DelegationID int64     `json:"delegation_id"`
	ExpenseID    *int64    `json:"expense_id,omitempty"`
	Filename     string    `json:"filename"`
	FilePath     string    `json:"file_path"`
	FileType     string    `json:"file_type,omitempty"`
	Description  string    `json:"description,omitempty"`
	UploadedAt   time.Time `json:"uploaded_at"`
}
