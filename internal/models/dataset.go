package models

// Dataset is the subset of the metadata service's dataset document used for
// routing: its access rights and the versions embedded alongside it.
type Dataset struct {
	ID           string
	AccessRights string
	Versions     []string
}

// HasVersion reports whether version is one of the dataset's versions.
func (d *Dataset) HasVersion(version string) bool {
	if d == nil || version == "" {
		return false
	}
	for _, v := range d.Versions {
		if v == version {
			return true
		}
	}
	return false
}
