package policy

// DefaultRoot is the label every workflow in the voice-ai tree receives.
const DefaultRoot = "voice-ai"

var defaultCatalog = Catalog{
	// parent
	"voice-ai": "UWjQVM4os19WtLu8",

	// categories
	"voice-agents":        "s4r8s1vRiiWzJt1G",
	"speech-processing":   "HOA6OdXgt8vhpemf",
	"messaging-bots":      "lJ8hf3WiU2bSlRJK",
	"content-creation":    "1uxOyzZsht9OIkFF",
	"business-automation": "NIBbB2W50ma4sLFU",
	"ai-assistants":       "ZUE2fN0CLZoPBcNa",
	"utilities":           "L53QZlJKyJHeajcE",

	// platforms
	"vapi":       "zNiQsUuvQOZ9P0TB",
	"retell":     "BW0dK8vklZ7pKlID",
	"twilio":     "lLxLt8ZwYyoE4g6j",
	"elevenlabs": "jDlNTa5HnrptJUAn",
	"whisper":    "lwmduhBeNcVyogNi",
	"telegram":   "EQdXWLa65zK23wsb",
	"whatsapp":   "fXQENEHAx4lteMH8",
	"slack":      "T0qwVYgShehCPKTe",

	// use cases
	"booking-scheduling": "kD2nI6QrYKIUjlXH",
	"lead-generation":    "vt2Zq8H97fqQVOC1",
	"notifications":      "RRDbhLpoCabOUjHV",
	"video":              "LOx99HmiWQLfYmw3",
	"podcast-audio":      "fIiodwbaCRLgy0JJ",

	// technology
	"tts": "8qM0l9XNrlwrEBnL",
	"stt": "rqtbJhO70yAqDHFp",
}

var defaultRules = []Rule{
	{Path: "01-voice-agents", Labels: []string{"voice-ai", "voice-agents"}},
	{Path: "01-voice-agents/vapi", Labels: []string{"voice-ai", "voice-agents", "vapi"}},
	{Path: "01-voice-agents/retell", Labels: []string{"voice-ai", "voice-agents", "retell"}},
	{Path: "01-voice-agents/twilio", Labels: []string{"voice-ai", "voice-agents", "twilio"}},

	{Path: "02-speech-processing", Labels: []string{"voice-ai", "speech-processing"}},
	{Path: "02-speech-processing/elevenlabs", Labels: []string{"voice-ai", "speech-processing", "elevenlabs", "tts"}},
	{Path: "02-speech-processing/whisper", Labels: []string{"voice-ai", "speech-processing", "whisper", "stt"}},
	{Path: "02-speech-processing/other-tts", Labels: []string{"voice-ai", "speech-processing", "tts"}},

	{Path: "03-messaging-bots", Labels: []string{"voice-ai", "messaging-bots"}},
	{Path: "03-messaging-bots/telegram", Labels: []string{"voice-ai", "messaging-bots", "telegram"}},
	{Path: "03-messaging-bots/whatsapp", Labels: []string{"voice-ai", "messaging-bots", "whatsapp"}},
	{Path: "03-messaging-bots/slack", Labels: []string{"voice-ai", "messaging-bots", "slack"}},

	{Path: "04-content-creation", Labels: []string{"voice-ai", "content-creation"}},
	{Path: "04-content-creation/video", Labels: []string{"voice-ai", "content-creation", "video"}},
	{Path: "04-content-creation/podcast-audio", Labels: []string{"voice-ai", "content-creation", "podcast-audio"}},

	{Path: "05-business-automation", Labels: []string{"voice-ai", "business-automation"}},
	{Path: "05-business-automation/booking-scheduling", Labels: []string{"voice-ai", "business-automation", "booking-scheduling"}},
	{Path: "05-business-automation/lead-generation", Labels: []string{"voice-ai", "business-automation", "lead-generation"}},
	{Path: "05-business-automation/notifications", Labels: []string{"voice-ai", "business-automation", "notifications"}},

	{Path: "06-ai-assistants", Labels: []string{"voice-ai", "ai-assistants"}},

	{Path: "07-utilities", Labels: []string{"voice-ai", "utilities"}},
}

// Default returns the built-in voice-ai taxonomy.
func Default() *Policy {
	p, err := New(DefaultRoot, defaultRules, defaultCatalog)
	if err != nil {
		panic("policy: invalid built-in table: " + err.Error())
	}
	return p
}
