package config

const (
	defaultConfigPath    = "~/.config/vidblur/config.toml"
	defaultOutputVideo   = "results/blurred_output.mp4"
	defaultLogDir        = "~/.local/share/vidblur/logs"
	defaultStateDir      = "~/.local/share/vidblur"
	defaultSampleFrames  = 500
	defaultQueueDepth    = 32
	defaultMaxStrength   = 50
	defaultCFRFPS        = 30
	defaultCFRPreset     = "fast"
	defaultCFRCRF        = 18
	defaultEncoderCodec  = "libx264"
	defaultEncoderPreset = "fast"
	defaultEncoderCRF    = 18
	defaultEncoderPixFmt = "yuv420p"
	defaultPreviewWidth  = 1280
	defaultFFmpegBinary  = "ffmpeg"
	defaultFFprobeBinary = "ffprobe"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	defaultLogRetention  = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputVideo: defaultOutputVideo,
			LogDir:      defaultLogDir,
			StateDir:    defaultStateDir,
		},
		Processing: Processing{
			SampleFrames: defaultSampleFrames,
			QueueDepth:   defaultQueueDepth,
			MaxStrength:  defaultMaxStrength,
		},
		CFR: CFR{
			Enabled: true,
			FPS:     defaultCFRFPS,
			Preset:  defaultCFRPreset,
			CRF:     defaultCFRCRF,
		},
		Encoder: Encoder{
			Codec:  defaultEncoderCodec,
			Preset: defaultEncoderPreset,
			CRF:    defaultEncoderCRF,
			PixFmt: defaultEncoderPixFmt,
		},
		FFmpeg: FFmpeg{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
		},
		Preview: Preview{
			MaxWidth: defaultPreviewWidth,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetention,
		},
	}
}
