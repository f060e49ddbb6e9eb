package sjoin

// Phase is a step of a distributed join. Every rank moves through the phases in the same order.
type Phase int

const (
	// Idle indicates that a join has not started
	Idle Phase = iota
	// RoutingBuild indicates that build rows are being assigned destination ranks
	RoutingBuild
	// ShufflingBuild indicates that build rows are being exchanged
	ShufflingBuild
	// RoutingProbe indicates that probe rows are being assigned destination ranks
	RoutingProbe
	// ShufflingProbe indicates that probe rows are being exchanged
	ShufflingProbe
	// Joining indicates that co-located rows are being matched locally
	Joining
	// Done indicates that the output chunk is ready
	Done
)

// NumPhases is the number of distinct Phases
const NumPhases = int(Done) + 1

// String returns the name of a Phase
func (p Phase) String() string {
	switch p {
	case Idle:
		return "Idle"
	case RoutingBuild:
		return "RoutingBuild"
	case ShufflingBuild:
		return "ShufflingBuild"
	case RoutingProbe:
		return "RoutingProbe"
	case ShufflingProbe:
		return "ShufflingProbe"
	case Joining:
		return "Joining"
	case Done:
		return "Done"
	default:
		return "Unknown"
	}
}
