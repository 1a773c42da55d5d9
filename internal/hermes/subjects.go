package hermes

const (
	StreamName   = "HOTLIKEME_EVENTS"
	StreamMaxAge = "720h" // 30 days
)

func SubjectComparisonCreated(id string) string { return "hotlikeme.comparison." + id + ".created" }
func SubjectComparisonDecided(id string) string { return "hotlikeme.comparison." + id + ".decided" }
func SubjectCandidateRated(id string) string    { return "hotlikeme.candidate." + id + ".rated" }
