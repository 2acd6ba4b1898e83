package bot

// =============================================================================
// General messages
// =============================================================================

const (
	MsgUnexpectedErr = `Unexpected error: %s`
	MsgVersionInfo   = "Version: %s\nBuilt: %s"
	MsgWelcome       = `
		*ChadOrChud* 🗿

		Let AI judge your physiognomy. Will you mog the competition or is it over for you?

		Send a photo for a brutally honest assessment. JPG, PNG, WEBP or HEIC, up to %dMB. Sending it as a file keeps full quality.

		_Results generated by AI for entertainment._
	`
	MsgHelp = `
		Send a photo and get rated.

		/start - Show the intro
		/reset - Start over
		/history - Your recent ratings
		/version - Show version info
	`
	MsgSendPhoto = "Send a photo to get rated."
)

// =============================================================================
// Upload messages
// =============================================================================

const (
	MsgDownloadFailed = "Could not download your photo from Telegram. Please send it again."
)

// =============================================================================
// Analysis messages
// =============================================================================

const (
	MsgAnalyzingHeader = "*Analyzing Physiology* 🔬"
	MsgAnalysisFailed  = "*Analysis Failed*\n\n%s"
	MsgResultCaption   = `
		*%s* %s
		%s

		🏷 %s

		%s
	`
	MsgKeyObservations = "*Key Observations*\n%s"
	MsgKitHeader       = "🛍 *Your Looksmaxxing Kit*\n\n%s\n_Products linked are AI suggested searches based on your analysis._"
	MsgKitItem         = "*%s* · %s\n%s\n"
)

// LoadingMessages cycle while an analysis is running.
var LoadingMessages = []string{
	"Measuring jawline geometry...",
	"Calculating canthal tilt...",
	"Scanning for negative aura...",
	"Analyzing aesthetic potential...",
	"Consulting the council of Chads...",
	"Detecting physiognomy metrics...",
	"Calibrating mogging sensors...",
}

// Button labels
const (
	BtnUploadAnother = "🔄 Upload Another"
	BtnTryAgain      = "🔄 Try Again"
	BtnCancel        = "✖ Cancel"
)

// =============================================================================
// History and stats messages
// =============================================================================

const (
	MsgHistoryNotAvailable = "History is not available."
	MsgHistoryEmpty        = "No ratings yet. Send a photo!"
	MsgHistoryHeader       = "*Your recent ratings*\n\n"
	MsgHistoryItem         = "%s *%d* %s · _%s_\n"
	MsgStatsNotAllowed     = "Not allowed."
	MsgStats               = `
		*Stats*

		Ratings: %d
		Users: %d
		Chads: %d
		Chuds: %d
		Average score: %.1f
		Active sessions: %d
	`
	MsgStatsUsage = `

		*Gemini usage*
		Calls: %d
		Tokens: %d in / %d out
		Cost: $%.4f
	`
)
