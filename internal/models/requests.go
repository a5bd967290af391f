package models

// SignupRequest is the body of POST /api/auth/signup
type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// VerifyOTPRequest is the body of POST /api/auth/verify-otp
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required"`
}

// LoginRequest is shared by citizen and employee login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ReportSubmission is the decoded multipart report form.
type ReportSubmission struct {
	Title            string   `validate:"required,max=100"`
	Content          string   `validate:"required"`
	Location         Location `validate:"required"`
	PhotoContentType string   `validate:"required"`
}

// StatusUpdateRequest is the body of PATCH /api/admin/reports/{reportId}/status
type StatusUpdateRequest struct {
	Status ReportStatus `json:"status" validate:"required"`
}

// RegisterEmployeeRequest is the body of POST /api/admin/register.
// District is accepted flat or nested under location, as the admin panel
// sends the latter.
type RegisterEmployeeRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     Role   `json:"role" validate:"required"`
	District string `json:"district"`
	Location *struct {
		District string `json:"district"`
	} `json:"location,omitempty"`
}

// EffectiveDistrict returns the district from either request shape.
func (r *RegisterEmployeeRequest) EffectiveDistrict() string {
	if r.District != "" {
		return r.District
	}
	if r.Location != nil {
		return r.Location.District
	}
	return ""
}

// EmployeeStatusRequest is the body of PATCH /api/admin/employees/{employeeId}/status
type EmployeeStatusRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// CreateAuthorityRequest is the body of POST /api/admin/authorities
type CreateAuthorityRequest struct {
	District      string `json:"district" validate:"required"`
	Block         string `json:"block" validate:"required"`
	Locality      string `json:"locality" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	AuthorityName string `json:"authorityName"`
	ContactNumber string `json:"contactNumber"`
}

// CitizenSummary is the user object returned on citizen auth.
type CitizenSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// EmployeeSummary is the employee object returned on admin login/register.
type EmployeeSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	District string `json:"district,omitempty"`
}

// AuthResult carries a freshly issued token.
type AuthResult struct {
	Message  string           `json:"message,omitempty"`
	Token    string           `json:"token"`
	User     *CitizenSummary  `json:"user,omitempty"`
	Employee *EmployeeSummary `json:"employee,omitempty"`
}

// UpvoteResult is returned by the upvote toggle.
type UpvoteResult struct {
	ReportID    string `json:"reportId"`
	Upvoted     bool   `json:"upvoted"`
	UpvoteCount int    `json:"upvoteCount"`
}
