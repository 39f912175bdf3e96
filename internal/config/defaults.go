package config

const (
	defaultBind        = "0.0.0.0:8000"
	defaultLockDir     = "~/.local/state/placepipe"
	defaultLogDir      = "~/.local/share/placepipe/logs"
	defaultWhisperWork = "~/.cache/placepipe/whisper"

	defaultCallbackTimeoutSeconds = 10

	defaultYouTubeBaseURL        = "https://www.googleapis.com/youtube/v3"
	defaultYouTubeTimeoutSeconds = 10

	defaultGeminiBaseURL        = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel          = "gemini-2.0-flash"
	defaultGeminiTimeoutSeconds = 120

	defaultOllamaBaseURL        = "http://localhost:11434"
	defaultOllamaModel          = "llama3.1"
	defaultOllamaMaxAttempts    = 3
	defaultOllamaTimeoutSeconds = 120

	defaultNaverBaseURL        = "https://openapi.naver.com/v1/search"
	defaultNaverTimeoutSeconds = 10

	defaultWhisperBinary   = "whisper-ctranslate2"
	defaultWhisperModel    = "large-v3"
	defaultWhisperLanguage = "ko"

	defaultRegionYStartPercent = 0.60
	defaultRegionHeightPercent = 0.40
	defaultSampleFPS           = 2
	defaultHashThreshold       = 10

	defaultExtractionBackend = "gemini"

	defaultSMBPort = 445
)

// Default returns the baseline configuration used before a config file or
// environment overrides are applied.
func Default() Config {
	return Config{
		Server: Server{
			Bind:    defaultBind,
			LockDir: defaultLockDir,
		},
		Backend: Backend{
			TimeoutSeconds: defaultCallbackTimeoutSeconds,
		},
		YouTube: YouTube{
			BaseURL:        defaultYouTubeBaseURL,
			TimeoutSeconds: defaultYouTubeTimeoutSeconds,
		},
		Gemini: Gemini{
			BaseURL:        defaultGeminiBaseURL,
			Model:          defaultGeminiModel,
			TimeoutSeconds: defaultGeminiTimeoutSeconds,
		},
		Ollama: Ollama{
			BaseURL:        defaultOllamaBaseURL,
			Model:          defaultOllamaModel,
			MaxAttempts:    defaultOllamaMaxAttempts,
			TimeoutSeconds: defaultOllamaTimeoutSeconds,
		},
		Naver: Naver{
			BaseURL:        defaultNaverBaseURL,
			TimeoutSeconds: defaultNaverTimeoutSeconds,
		},
		Whisper: Whisper{
			Binary:   defaultWhisperBinary,
			Model:    defaultWhisperModel,
			Language: defaultWhisperLanguage,
			WorkDir:  defaultWhisperWork,
		},
		Frames: Frames{
			RegionYStartPercent: defaultRegionYStartPercent,
			RegionHeightPercent: defaultRegionHeightPercent,
			SampleFPS:           defaultSampleFPS,
			HashThreshold:       defaultHashThreshold,
		},
		Extraction: Extraction{
			Backend: defaultExtractionBackend,
		},
		FileServer: FileServer{
			Port: defaultSMBPort,
		},
		Tools: Tools{
			FFmpeg:  "ffmpeg",
			FFprobe: "ffprobe",
			YtDlp:   "yt-dlp",
		},
		Logging: Logging{
			Format: "auto",
			Level:  "info",
			Dir:    defaultLogDir,
		},
	}
}
