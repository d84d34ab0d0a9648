package common

import (
	"flag"
	"time"
)

var Version = "v0.1.0"

var (
	Port            = flag.Int("port", 5000, "the listening port")
	PrintVersion    = flag.Bool("version", false, "print version and exit")
	EnableGzip      = flag.Bool("gzip", false, "enable gzip on requests and responses")
	LogDir          = flag.String("log-dir", "", "specify the log directory")
	InferenceConfig = flag.String("inference-config", "", "path or URL of an inference client config JSON")
)

var (
	SQLitePath       = "data/derma-detect.db"
	UploadPath       = "uploads"
	JWTSecret        = ""
	JWTRefreshSecret = ""
	SessionSecret    = ""
	RedisConnString  = ""
	InferenceBaseURL = ""
	CORSAllowOrigins = []string{"http://localhost:5173"}
)

const (
	JWTExpiry        = 24 * time.Hour
	JWTRefreshExpiry = 7 * 24 * time.Hour
)

// MaxUploadSize is the upload ceiling in bytes.
const MaxUploadSize = 5 << 20

// MaxListingLimit caps the optional limit query parameter of the listing
// endpoint.
const MaxListingLimit = 500

// AllowedImageTypes is the upload content-type allow-list. image/jpg is not a
// registered MIME type but browsers still send it.
var AllowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
}
