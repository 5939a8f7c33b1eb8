package version

// Version is set at build time via -ldflags "-X github.com/guiyumin/vthumb/internal/version.Version=..."
var Version = "dev"

// Repository is the GitHub slug used for self-update.
const Repository = "guiyumin/vthumb"
