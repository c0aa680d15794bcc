package raptor

// LabelKind discriminates how a Label was produced, per spec.md §3.
type LabelKind uint8

const (
	KindUninitialized LabelKind = iota
	KindOrigin
	KindVehicle
	KindTransferWalk
	KindTransferExtension
	KindTransferGuarantee
)

func (k LabelKind) IsTransfer() bool {
	return k == KindTransferWalk || k == KindTransferExtension || k == KindTransferGuarantee
}

// Label is the per-round, per-route-stop record described in spec.md
// §3. StopTime is only meaningful when Kind == KindVehicle.
type Label struct {
	Arrival     DateTime
	Departure   DateTime
	Predecessor RoutePointIdx
	StopTime    StopTimeIdx
	Kind        LabelKind
}

// UninitializedLabel is the zero-value sentinel label for a route-stop
// not yet reached in a given round.
var UninitializedLabel = Label{
	Predecessor: InvalidRoutePoint,
	StopTime:    InvalidStopTime,
	Kind:        KindUninitialized,
}

// Instant returns the label's arrival (forward) or departure (reverse)
// field, per the direction's instant_field selector (spec.md §4.3/§9).
func (l Label) Instant(dir Direction) DateTime {
	if dir.Forward() {
		return l.Arrival
	}
	return l.Departure
}
