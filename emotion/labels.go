package emotion

// Neutral is the dominant emotion when nothing could be classified.
const Neutral = "neutral"

var descriptors = map[string]string{
	"joy":      "Confident",
	"love":     "Confident",
	"surprise": "Engaged",
	"sadness":  "Hesitant",
	"fear":     "Cautious",
	"anger":    "Assertive",
}

// Describe maps a classifier label to the interview-facing descriptor.
// Unknown labels are returned unchanged.
func Describe(label string) string {
	if d, ok := descriptors[label]; ok {
		return d
	}
	return label
}
