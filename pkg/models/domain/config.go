package domain

import "fmt"

// DirectoryProfile identifies a tenant profile from the local Azure config.
type DirectoryProfile struct {
	Name     string
	TenantID string
}

func (p DirectoryProfile) String() string {
	return fmt.Sprintf("%s:%s", p.Name, p.TenantID)
}
