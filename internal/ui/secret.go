package ui

const (
	// BuilderCredit is shown for the builder trigger words.
	BuilderCredit = "Bu kutsal site Bay4lly tarafından inşa edildi."

	ShadyMessage   = "Shady1545 Dergahına Gidiliyor..."
	ShadyChannel   = "https://youtube.com/@Sshady1545"
	RoboticMessage = "Robotic1545 YouTube Kanalına Gidiliyor..."
	RoboticChannel = "https://youtube.com/@ofc-exelux"
)

// Trigger is the outcome of a matched secret-panel input.
type Trigger struct {
	Message string
	// Link is opened LinkDelay after the match. Empty means no link.
	Link string
}

var triggers = map[string]Trigger{
	"bay4lly":     {Message: BuilderCredit},
	"gofret":      {Message: BuilderCredit},
	"forget1221":  {Message: BuilderCredit},
	"shady1545":   {Message: ShadyMessage, Link: ShadyChannel},
	"robotic1545": {Message: RoboticMessage, Link: RoboticChannel},
}

// LookupTrigger reports the trigger for an already lower-cased input.
func LookupTrigger(input string) (Trigger, bool) {
	t, ok := triggers[input]
	return t, ok
}
