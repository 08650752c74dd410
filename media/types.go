// media/types.go
package media

type AssetType string

const (
	AssetTypePhoto     AssetType = "photo"
	AssetTypeThumbnail AssetType = "thumbnail"
	AssetTypeUnknown   AssetType = "unknown"
)
