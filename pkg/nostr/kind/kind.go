package kind

// T is the event kind number, the protocol code for the type of an event.
type T int

const (
	ProfileMetadata        T = 0
	TextNote               T = 1
	RecommendServer        T = 2
	FollowList             T = 3
	EncryptedDirectMessage T = 4
	Deletion               T = 5
	Repost                 T = 6
	Reaction               T = 7
	Seal                   T = 13
	GiftWrap               T = 1059
	GiftWrapWithKind4      T = 1060
	ClientAuthentication   T = 22242
	LongFormContent        T = 30023
)

// Map holds human readable names for the kinds the relay treats specially.
var Map = map[T]string{
	ProfileMetadata:        "profile metadata",
	TextNote:               "text note",
	RecommendServer:        "recommend server",
	FollowList:             "follow list",
	EncryptedDirectMessage: "encrypted direct message",
	Deletion:               "deletion",
	Repost:                 "repost",
	Reaction:               "reaction",
	Seal:                   "seal",
	GiftWrap:               "gift wrap",
	GiftWrapWithKind4:      "gift wrap with kind 4",
	ClientAuthentication:   "client authentication",
	LongFormContent:        "long form content",
}

// GetString returns the name of the kind if there is one, otherwise empty.
func GetString(k T) string { return Map[k] }

// IsEphemeral events are broadcast to current subscribers but not stored.
func (k T) IsEphemeral() bool { return k >= 20000 && k < 30000 }

// IsReplaceable events replace any prior event of the same pubkey and kind.
func (k T) IsReplaceable() bool {
	return k == ProfileMetadata || k == FollowList ||
		(k >= 10000 && k < 20000)
}

// IsParameterizedReplaceable events replace prior events of the same pubkey,
// kind and first "d" tag value.
func (k T) IsParameterizedReplaceable() bool { return k >= 30000 && k < 40000 }

// IsRegular events are stored and returned in queries with no replacement
// semantics.
func (k T) IsRegular() bool {
	return !k.IsEphemeral() && !k.IsReplaceable() &&
		!k.IsParameterizedReplaceable()
}
