package models

// Profile is the role-specific projection returned alongside tokens on
// registration. It is a closed variant over Role: one concrete type per
// role that has a profile, nil for admins.
type Profile interface {
	isProfile()
}

// JobSeekerProfile is the projection for RoleJobSeeker accounts.
type JobSeekerProfile struct {
	FullName string
}

// EmployerProfile is the projection for RoleEmployer accounts. CompanyName
// is required at registration.
type EmployerProfile struct {
	FullName    string
	CompanyName string
}

func (JobSeekerProfile) isProfile() {}
func (EmployerProfile) isProfile()  {}

// NewProfile builds the projection for a role from the registration seed.
// Admin accounts have no profile; the nil return is intentional.
func NewProfile(role Role, fullName, companyName string) Profile {
	switch role {
	case RoleJobSeeker:
		return JobSeekerProfile{FullName: fullName}
	case RoleEmployer:
		return EmployerProfile{FullName: fullName, CompanyName: companyName}
	case RoleAdmin:
		return nil
	}
	return nil
}
