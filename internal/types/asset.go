package types

// AssetRef points at one stored binary object. Path is the authoritative
// handle used for deletion; URL is the derived public address served to
// clients.
type AssetRef struct {
	Path string `gorm:"column:path" json:"path"`
	URL  string `gorm:"column:url" json:"url"`
}

func (a AssetRef) IsZero() bool {
	return a.Path == "" && a.URL == ""
}
