package invitation

// Outcome is the terminal result of an invitation operation.
type Outcome int

const (
	Created Outcome = iota + 1
	Accepted
	Declined
	Cancelled
	InvalidInput
	NotFounder
	NotMember
	PersonNotFound
	SelfInvite
	AlreadyInvited
	AlreadyMember
	InvitationNotFound
	StoreError
)

// Kind groups outcomes by the reason an operation stopped.
type Kind int

const (
	KindSuccess Kind = iota
	KindValidation
	KindAuthorization
	KindState
	KindStore
)

var outcomeCodes = map[Outcome]string{
	Created:            "created",
	Accepted:           "accepted",
	Declined:           "declined",
	Cancelled:          "cancelled",
	InvalidInput:       "invalid_input",
	NotFounder:         "not_founder",
	NotMember:          "not_member",
	PersonNotFound:     "person_not_found",
	SelfInvite:         "self_invite",
	AlreadyInvited:     "already_invited",
	AlreadyMember:      "already_member",
	InvitationNotFound: "invitation_not_found",
	StoreError:         "store_error",
}

// String returns the stable snake_case code callers key their responses on.
func (o Outcome) String() string {
	if code, ok := outcomeCodes[o]; ok {
		return code
	}
	return "unknown"
}

func (o Outcome) Kind() Kind {
	switch o {
	case Created, Accepted, Declined, Cancelled:
		return KindSuccess
	case InvalidInput:
		return KindValidation
	case NotFounder, NotMember, SelfInvite:
		return KindAuthorization
	case PersonNotFound, AlreadyInvited, AlreadyMember, InvitationNotFound:
		return KindState
	default:
		return KindStore
	}
}

// OK reports whether the operation performed its transition.
func (o Outcome) OK() bool {
	return o.Kind() == KindSuccess
}

// MarshalText lets outcomes appear as their code in JSON and logs.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}
