package fim

var (
	// Version of the fim app. Set during build.
	Version = "v0.1.0"
	// Build timestamp. Set during build.
	Build = "n/a"
)
