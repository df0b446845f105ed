package service

import (
	"strings"

	"clubauth/internal/config"
	"clubauth/internal/models"
)

// RegistrationPolicy decides the initial status of a new account from the
// site configuration and the registering username.
type RegistrationPolicy struct {
	site config.Site
}

func NewRegistrationPolicy(site config.Site) *RegistrationPolicy {
	return &RegistrationPolicy{site: site}
}

// DecideStatus returns the status a new account starts with. The admin
// allowlist is matched case-insensitively and wins even when verification
// is globally required.
func (p *RegistrationPolicy) DecideStatus(username string) models.UserStatus {
	for _, admin := range p.site.AdminUserList {
		if strings.EqualFold(admin, username) {
			return models.StatusActive
		}
	}
	if p.site.VerifyRegisterUser {
		return models.StatusVerifying
	}
	return models.StatusActive
}
