package config

import "strings"

// AppVersion is the version of the application, set at build time.
var AppVersion string

// AppName is the name of the application.
const AppName = "nitrohydra"

// CacheSubDir is the directory under the user cache root holding thumbnails and the composed wallpaper.
var CacheSubDir = strings.ToLower(AppName)

// ConfigFileName is the name of the configuration file under the user config directory.
const ConfigFileName = "config.toml"

// LogExt is the extension for the log files.
var LogExt = ".log"

// ComposedFileName is the well-known name of the composed wallpaper inside the cache directory.
const ComposedFileName = "_composed.jpg"

// ComposedTempFileName is the sibling file written before the atomic rename.
const ComposedTempFileName = "_composed.tmp"

// ThumbnailExt is the extension of cached thumbnails.
const ThumbnailExt = ".png"

// Defaults
const (
	DefaultThumbnailSize  = 512
	DefaultJPEGQuality    = 95
	DefaultResampleFilter = "catmullrom"
	DefaultCropMode       = "center"
	DefaultPreviewSize    = 1024
)

// DefaultMonitorCommand queries the X server for the output layout.
var DefaultMonitorCommand = []string{"xrandr", "--query"}

// DefaultBackgroundSchemas are the gsettings schemas tried, in order, when installing a wallpaper.
var DefaultBackgroundSchemas = []string{
	"org.cinnamon.desktop.background",
	"org.gnome.desktop.background",
	"org.mate.background",
}

// DefaultExtensions are the image file extensions picked up by the gallery scan.
var DefaultExtensions = []string{"jpg", "jpeg", "png", "webp", "bmp", "gif"}
