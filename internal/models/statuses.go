package models

type UserStatus string
type UserRole string
type CourseStatus string
type CourseLevel string
type PurchaseStatus string
type JobStatus string
type JobType string
type ApplicationStatus string
type UploadKind string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusBanned    UserStatus = "banned"

	UserRoleLearner    UserRole = "learner"
	UserRoleInstructor UserRole = "instructor"
	UserRoleEmployer   UserRole = "employer"
	UserRoleAdmin      UserRole = "admin"

	CourseStatusDraft    CourseStatus = "draft"
	CourseStatusActive   CourseStatus = "active"
	CourseStatusArchived CourseStatus = "archived"

	CourseLevelBeginner     CourseLevel = "beginner"
	CourseLevelIntermediate CourseLevel = "intermediate"
	CourseLevelAdvanced     CourseLevel = "advanced"

	// Покупка проходит ровно один переход:
	// submitted -> approved или submitted -> rejected.
	PurchaseStatusSubmitted PurchaseStatus = "submitted"
	PurchaseStatusApproved  PurchaseStatus = "approved"
	PurchaseStatusRejected  PurchaseStatus = "rejected"

	JobStatusDraft  JobStatus = "draft"
	JobStatusActive JobStatus = "active"
	JobStatusClosed JobStatus = "closed"

	JobTypeFullTime   JobType = "full-time"
	JobTypePartTime   JobType = "part-time"
	JobTypeContract   JobType = "contract"
	JobTypeInternship JobType = "internship"
	JobTypeFreelance  JobType = "freelance"

	ApplicationStatusPending     ApplicationStatus = "pending"
	ApplicationStatusReviewing   ApplicationStatus = "reviewing"
	ApplicationStatusShortlisted ApplicationStatus = "shortlisted"
	ApplicationStatusRejected    ApplicationStatus = "rejected"
	ApplicationStatusHired       ApplicationStatus = "hired"

	UploadKindReceipt  UploadKind = "receipt"
	UploadKindCV       UploadKind = "cv"
	UploadKindMaterial UploadKind = "course_material"
)
