package layout

// Options configures the radial layout. The zero value is not usable; start
// from [DefaultOptions].
type Options struct {
	// RadiusOffset is the base distance of the root band from the origin.
	RadiusOffset float64 `json:"radius_offset" bson:"radius_offset"`

	// BandWidth is the radial width of the first depth band.
	BandWidth float64 `json:"band_width" bson:"band_width"`

	// BandGrowth widens each successive band by this fraction of BandWidth,
	// giving deeper (more crowded) generations more radial room.
	BandGrowth float64 `json:"band_growth" bson:"band_growth"`

	// Influence weights. They blend three normalized signals into [0,1]:
	// log-scaled karma, square-root-scaled invite count, and log-scaled
	// subtree size. The weights should sum to 1.
	KarmaWeight   float64 `json:"karma_weight" bson:"karma_weight"`
	InviteWeight  float64 `json:"invite_weight" bson:"invite_weight"`
	SubtreeWeight float64 `json:"subtree_weight" bson:"subtree_weight"`

	// InviteCeil caps the invite count before normalization.
	InviteCeil int `json:"invite_ceil" bson:"invite_ceil"`

	// SubtreeCeil caps the subtree size before normalization.
	SubtreeCeil int `json:"subtree_ceil" bson:"subtree_ceil"`

	// InfluenceReach is the fraction of the band width a maximal influence
	// score pushes a node outward.
	InfluenceReach float64 `json:"influence_reach" bson:"influence_reach"`

	// ParentPull is the weight of the parent's angle when resolving a node's
	// angle at depth > 1; the remainder goes to the sector midpoint.
	ParentPull float64 `json:"parent_pull" bson:"parent_pull"`

	// SectorMargin keeps resolved angles this many radians inside the
	// sector bounds so the parent pull cannot place a node on a boundary.
	SectorMargin float64 `json:"sector_margin" bson:"sector_margin"`

	// JitterRadius and JitterAngle bound the deterministic per-node jitter.
	// Angle jitter is additionally damped by 1/(1+depth).
	JitterRadius float64 `json:"jitter_radius" bson:"jitter_radius"`
	JitterAngle  float64 `json:"jitter_angle" bson:"jitter_angle"`

	// TargetRadius is the radius the farthest tree node is rescaled to, so
	// every dataset fills the same canonical extent.
	TargetRadius float64 `json:"target_radius" bson:"target_radius"`

	// OrphanRingFactor places orphans on a ring at TargetRadius times this
	// factor, outside the main tree.
	OrphanRingFactor float64 `json:"orphan_ring_factor" bson:"orphan_ring_factor"`
}

// DefaultOptions returns the layout defaults tuned for the ~19k-user dataset.
func DefaultOptions() Options {
	return Options{
		RadiusOffset:     60,
		BandWidth:        140,
		BandGrowth:       0.15,
		KarmaWeight:      0.4,
		InviteWeight:     0.3,
		SubtreeWeight:    0.3,
		InviteCeil:       100,
		SubtreeCeil:      2000,
		InfluenceReach:   0.6,
		ParentPull:       0.7,
		SectorMargin:     0.01,
		JitterRadius:     8,
		JitterAngle:      0.06,
		TargetRadius:     5000,
		OrphanRingFactor: 1.3,
	}
}
