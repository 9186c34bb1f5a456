package versioning

// Populated at build time with -ldflags "-X"
var (
	Version   = "dev"
	Commit    string
	Branch    string
	BuildTime string
)
