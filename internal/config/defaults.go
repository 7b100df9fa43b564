package config

const (
	defaultCacheDir           = "~/Music/soundcloud/CACHE"
	defaultPlaylistsDir       = "~/Music/soundcloud/CACHE/playlists"
	defaultLogDir             = "~/.local/share/tonearm/logs"
	defaultSeratoDir          = "~/Music/_Serato_"
	defaultM3UDir             = "~/Music/rekordbox"
	defaultAudioFormat        = "mp3"
	defaultDownloadTimeout    = 3600
	defaultAnalysisProfile    = "edma"
	defaultAnalysisWindow     = 8192
	defaultAnalysisHop        = 4096
	defaultAnalysisMaxSeconds = 120
	defaultParentCrate        = "sync"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultLogRetentionDays   = 60
	defaultQueuePollInterval  = 5
	defaultErrorRetryInterval = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir:     defaultCacheDir,
			PlaylistsDir: defaultPlaylistsDir,
			LogDir:       defaultLogDir,
			SeratoDir:    defaultSeratoDir,
			M3UDir:       defaultM3UDir,
		},
		SoundCloud: SoundCloud{
			AudioFormat:     defaultAudioFormat,
			DownloadTimeout: defaultDownloadTimeout,
		},
		Analysis: Analysis{
			Profile:    defaultAnalysisProfile,
			WindowSize: defaultAnalysisWindow,
			HopSize:    defaultAnalysisHop,
			MaxSeconds: defaultAnalysisMaxSeconds,
		},
		Tags: Tags{
			WriteKey:      true,
			WritePlaylist: true,
		},
		Export: Export{
			ParentCrate: defaultParentCrate,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
