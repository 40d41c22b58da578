package domain

type Place struct {
	ID       int64
	SourceID *string // id of the place on the reviews platform
	Name     *string
	Country  *string
	City     *string
	Lat, Lon *float64
	RawJSON  []byte // full platform payload
}
