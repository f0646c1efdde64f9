package service

import (
	"testing"
	"time"

	"github.com/gitcustomcode/nexevent-api-mvp-sub000/internal/model"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestDeriveStatusDecisionOrder(t *testing.T) {
	fresh := timePtr(time.Now().UTC().Add(24 * time.Hour))
	expired := timePtr(time.Now().UTC().Add(-time.Hour))

	pending := &model.EventParticipant{SignerID: strPtr("signer-1")}
	signedFalse := false
	stillPending := &model.EventParticipant{SignerID: strPtr("signer-1"), Signature: &signedFalse}
	signedTrue := true
	signed := &model.EventParticipant{SignerID: strPtr("signer-1"), Signature: &signedTrue}

	cases := []struct {
		name     string
		gates    model.EventGates
		user     model.UserGates
		existing *model.EventParticipant
		want     model.ParticipantStatus
	}{
		{
			name:     "pending signature wins over every other gate",
			gates:    model.EventGates{CredentialType: model.CredentialFacial, ParticipantNetworks: true, HasSignatureTerm: true},
			user:     model.UserGates{},
			existing: pending,
			want:     model.StatusAwaitingSignature,
		},
		{
			name:     "signature=false still counts as pending",
			gates:    model.EventGates{CredentialType: model.CredentialQRCode},
			user:     model.UserGates{LatestFacialExpires: fresh},
			existing: stillPending,
			want:     model.StatusAwaitingSignature,
		},
		{
			name:  "network gate fires before the signature term gate",
			gates: model.EventGates{CredentialType: model.CredentialQRCode, ParticipantNetworks: true, HasSignatureTerm: true},
			user:  model.UserGates{SocialCount: 0, LatestFacialExpires: fresh},
			want:  model.StatusAwaitingQuiz,
		},
		{
			name:  "signature term gate fires before the facial gate",
			gates: model.EventGates{CredentialType: model.CredentialFacial, HasSignatureTerm: true},
			user:  model.UserGates{},
			want:  model.StatusAwaitingSignature,
		},
		{
			name:  "facial credential with a fresh record completes",
			gates: model.EventGates{CredentialType: model.CredentialFacial},
			user:  model.UserGates{LatestFacialExpires: fresh},
			want:  model.StatusComplete,
		},
		{
			name:  "facial credential with no record gates on facial",
			gates: model.EventGates{CredentialType: model.CredentialFacial},
			user:  model.UserGates{},
			want:  model.StatusAwaitingFacial,
		},
		{
			name:  "facial-in-site credential with an expired record gates on facial",
			gates: model.EventGates{CredentialType: model.CredentialFacialInSite},
			user:  model.UserGates{LatestFacialExpires: expired},
			want:  model.StatusAwaitingFacial,
		},
		{
			name:  "facial-in-site credential with a fresh record completes",
			gates: model.EventGates{CredentialType: model.CredentialFacialInSite},
			user:  model.UserGates{LatestFacialExpires: fresh},
			want:  model.StatusComplete,
		},
		{
			name:  "qrcode with no facial record gates on facial",
			gates: model.EventGates{CredentialType: model.CredentialQRCode},
			user:  model.UserGates{},
			want:  model.StatusAwaitingFacial,
		},
		{
			name:  "qrcode with expired facial gates on facial",
			gates: model.EventGates{CredentialType: model.CredentialQRCode},
			user:  model.UserGates{LatestFacialExpires: expired},
			want:  model.StatusAwaitingFacial,
		},
		{
			name:  "all gates satisfied",
			gates: model.EventGates{CredentialType: model.CredentialQRCode},
			user:  model.UserGates{SocialCount: 1, LatestFacialExpires: fresh},
			want:  model.StatusComplete,
		},
		{
			name:     "completed signature does not gate",
			gates:    model.EventGates{CredentialType: model.CredentialQRCode},
			user:     model.UserGates{LatestFacialExpires: fresh},
			existing: signed,
			want:     model.StatusComplete,
		},
		{
			name:  "networks satisfied falls through to later gates",
			gates: model.EventGates{CredentialType: model.CredentialQRCode, ParticipantNetworks: true},
			user:  model.UserGates{SocialCount: 2, LatestFacialExpires: fresh},
			want:  model.StatusComplete,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DeriveStatus(tc.gates, tc.user, tc.existing)
			if got != tc.want {
				t.Fatalf("DeriveStatus = %s, want %s", got, tc.want)
			}
		})
	}
}

func strPtr(s string) *string { return &s }
