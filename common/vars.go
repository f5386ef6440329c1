package common

// Version is set at build time with -ldflags "-X .../common.Version=v1.2.3".
var Version = "dev"

// PackageName is the module path. Its last element is the default log
// service tag.
const PackageName = "github.com/ruteri/registration-form"
