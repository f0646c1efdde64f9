package service

import (
	"time"

	"github.com/gitcustomcode/nexevent-api-mvp-sub000/internal/model"
)

// DeriveStatus computes the gating status of a participant from the
// event gates and the user's profile facts.  It is evaluated once at
// registration (existing == nil) and re-evaluated after any profile
// mutation.  The decision order is part of the contract and must not be
// reordered: a pending e-signature wins over every other gate, and the
// signature-term gate wins over the facial gate.
//
// The second branch keeps the upstream label AWAITING_QUIZ even though
// it gates on social-network data, not quiz content.  That pairing is
// the existing contract; renaming it is a product decision, not a
// refactor.
func DeriveStatus(gates model.EventGates, user model.UserGates, existing *model.EventParticipant) model.ParticipantStatus {
	if existing != nil && existing.PendingSignature() {
		return model.StatusAwaitingSignature
	}
	if gates.ParticipantNetworks && user.SocialCount == 0 {
		return model.StatusAwaitingQuiz
	}
	if gates.HasSignatureTerm {
		return model.StatusAwaitingSignature
	}
	if needsFacial(user.LatestFacialExpires) {
		return model.StatusAwaitingFacial
	}
	return model.StatusComplete
}

// needsFacial reports whether the facial gate blocks the participant: a
// user without a facial record, or whose newest record has expired,
// must (re)upload one.  The check is the same for every credential
// type; a facial credential makes the record mandatory for entry, not
// permanent, so a fresh capture satisfies it and the participant can
// complete.
func needsFacial(latestExpires *time.Time) bool {
	if latestExpires == nil {
		return true
	}
	return latestExpires.Before(time.Now().UTC())
}
