package domain

import "time"

type DocumentStatus string

const (
	DocumentDraft     DocumentStatus = "draft"
	DocumentSubmitted DocumentStatus = "submitted"
	DocumentApproved  DocumentStatus = "approved"
	DocumentRejected  DocumentStatus = "rejected"
)

// DocumentCategory groups document types by the compliance area they cover.
type DocumentCategory string

const (
	CategoryCompany         DocumentCategory = "company"
	CategorySafetyAndHealth DocumentCategory = "safety_and_health"
	CategoryEnvironmental   DocumentCategory = "environmental"
	CategoryPersonnel       DocumentCategory = "personnel"
	CategoryVehicles        DocumentCategory = "vehicles"
)

type DocumentType string

const (
	// Company.
	TypeTaxCertificate            DocumentType = "tax_certificate"
	TypeSocialSecurityCertificate DocumentType = "social_security_certificate"
	TypeLiabilityInsurance        DocumentType = "liability_insurance"
	TypeAccidentInsurance         DocumentType = "accident_insurance"

	// Safety and health.
	TypeRiskAssessment DocumentType = "risk_assessment"
	TypePreventionPlan DocumentType = "prevention_plan"
	TypeEmergencyPlan  DocumentType = "emergency_plan"

	// Environmental.
	TypeEnvironmentalPermit DocumentType = "environmental_permit"
	TypeWastePlan           DocumentType = "waste_management_plan"
	TypeEnvironmentalPolicy DocumentType = "environmental_policy"

	// Personnel.
	TypeIDCard              DocumentType = "id_card"
	TypeContract            DocumentType = "contract"
	TypeSocialSecurity      DocumentType = "social_security"
	TypeMedicalExam         DocumentType = "medical_exam"
	TypeTrainingCertificate DocumentType = "training_certificate"
	TypePPEReceipt          DocumentType = "ppe_receipt"

	// Vehicles.
	TypeVehicleRegistration DocumentType = "vehicle_registration"
	TypeVehicleInsurance    DocumentType = "vehicle_insurance"
	TypeTechnicalInspection DocumentType = "technical_inspection"
	TypeOperatorLicense     DocumentType = "operator_license"

	// Monthly labor control.
	TypePayroll               DocumentType = "payroll"
	TypeSocialSecurityPayment DocumentType = "social_security_payment"
	TypeAttendanceRecord      DocumentType = "attendance_record"

	// Free-form attachment where the checklist allows it.
	TypeOther DocumentType = "other"
)

type ReviewDecision string

const (
	DecisionApprove ReviewDecision = "approve"
	DecisionReject  ReviewDecision = "reject"
)

// Content is what the upload collaborator hands over after storing a file.
// The engine never reads the bytes behind the URL.
type Content struct {
	Name        string     `json:"name"`
	URL         string     `json:"url"`
	ContentType string     `json:"content_type"`
	Size        int64      `json:"size"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

type Document struct {
	ID       string           `json:"id"`
	FolderID string           `json:"folder_id"`
	Category DocumentCategory `json:"category"`
	Type     DocumentType     `json:"type"`
	Status   DocumentStatus   `json:"status"`

	Name        string `json:"name,omitempty"`
	URL         string `json:"url,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Size        int64  `json:"size,omitempty"`

	UploadedAt     *time.Time `json:"uploaded_at,omitempty"`
	UploadedByID   string     `json:"uploaded_by_id,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`

	// ExpiryNotifiedAt is set once an expiry reminder has gone out, so the
	// daily scan emits a single reminder per attachment.
	ExpiryNotifiedAt *time.Time `json:"expiry_notified_at,omitempty"`

	ReviewNotes  string     `json:"review_notes,omitempty"`
	ReviewDate   *time.Time `json:"review_date,omitempty"`
	ReviewedByID string     `json:"reviewed_by_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasContent reports whether a file has been attached to this checklist slot.
// Placeholder rows created by provisioning carry an empty URL.
func (d Document) HasContent() bool {
	return d.URL != ""
}
