package models

// User is the profile the services return on login and profile updates.
// It is also what the client persists as its session.
type User struct {
	ID         string `json:"_id,omitempty"`
	StudentID  string `json:"studentId"`
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Department string `json:"department,omitempty"`
	Batch      string `json:"batch,omitempty"`
	Avatar     string `json:"avatar,omitempty"`
}

// Identity is the key every record of this user is scoped by.
func (u User) Identity() string {
	if u.ID != "" {
		return u.ID
	}
	return u.StudentID
}

// DisplayName falls back to the student id when no name is set.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.StudentID
}

type RegisterRequest struct {
	StudentID  string `json:"studentId" validate:"required"`
	Password   string `json:"password" validate:"required,password"`
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty" validate:"omitempty,looseemail"`
	Phone      string `json:"phone,omitempty"`
	Department string `json:"department,omitempty"`
	Batch      string `json:"batch,omitempty"`
}

type LoginRequest struct {
	StudentID string `json:"studentId" validate:"required"`
	Password  string `json:"password" validate:"required"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,looseemail"`
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,password"`
}

// ProfilePatch is a partial profile update; nil fields are left unchanged.
type ProfilePatch struct {
	UserID     string  `json:"userId" validate:"required"`
	Name       *string `json:"name,omitempty"`
	Email      *string `json:"email,omitempty" validate:"omitempty,looseemail"`
	Phone      *string `json:"phone,omitempty"`
	Department *string `json:"department,omitempty"`
	Avatar     *string `json:"avatar,omitempty"`
}

// Apply copies the set fields of p onto u.
func (p ProfilePatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Department != nil {
		u.Department = *p.Department
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
}

type Stats struct {
	TotalExpenses      int     `json:"totalExpenses"`
	TotalExpenseAmount float64 `json:"totalExpenseAmount"`
	TotalFeedPosts     int     `json:"totalFeedPosts"`
	TotalEvents        int     `json:"totalEvents"`
	TotalTasks         int     `json:"totalTasks"`
	TotalDiaryEntries  int     `json:"totalDiaryEntries"`
}
