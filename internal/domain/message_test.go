package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TenderBeastJr/KittyConnect-FF/internal/domain"
)

func validBridgeMessage() domain.BridgeMessage {
	return domain.BridgeMessage{
		Owner:       "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		Name:        "Whiskers",
		Breed:       "Siamese",
		Image:       "ipfs://Qm123",
		DOB:         time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC),
		ShopPartner: "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
	}
}

func TestBridgeMessage_EncodeDecode(t *testing.T) {
	msg := validBridgeMessage()

	payload, err := msg.Encode()
	require.NoError(t, err)

	decoded, err := domain.DecodeBridgeMessage(payload)
	require.NoError(t, err)
	assert.Equal(t, msg, *decoded)
}

func TestBridgeMessage_EncodeCanonical(t *testing.T) {
	msg := validBridgeMessage()

	first, err := msg.Encode()
	require.NoError(t, err)
	second, err := msg.Encode()
	require.NoError(t, err)

	// the same record must always produce identical wire bytes
	assert.Equal(t, first, second)
}

func TestDecodeBridgeMessage_NormalizesAddresses(t *testing.T) {
	msg := validBridgeMessage()
	msg.Owner = "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"
	msg.ShopPartner = "0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359"

	payload, err := msg.Encode()
	require.NoError(t, err)

	decoded, err := domain.DecodeBridgeMessage(payload)
	require.NoError(t, err)
	assert.Equal(t, domain.Address("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"), decoded.Owner)
	assert.Equal(t, domain.Address("0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"), decoded.ShopPartner)
}

func TestDecodeBridgeMessage_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{
			name:    "malformed json",
			payload: []byte("not json"),
		},
		{
			name:    "empty object",
			payload: []byte("{}"),
		},
		{
			name:    "missing owner",
			payload: []byte(`{"name":"Whiskers","breed":"Siamese","dob":"2023-04-01T00:00:00Z","shop_partner":"0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"}`),
		},
		{
			name:    "zero address owner",
			payload: []byte(`{"owner":"0x0000000000000000000000000000000000000000","name":"Whiskers","breed":"Siamese","dob":"2023-04-01T00:00:00Z","shop_partner":"0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"}`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := domain.DecodeBridgeMessage(tt.payload)
			assert.Nil(t, decoded)
			assert.Equal(t, domain.ErrCodeInvalidArgument, domain.CodeOf(err))
		})
	}
}

func TestBridgeMessage_Profile(t *testing.T) {
	msg := validBridgeMessage()
	profile := msg.Profile()

	assert.Equal(t, msg.Name, profile.Name)
	assert.Equal(t, msg.Breed, profile.Breed)
	assert.Equal(t, msg.Image, profile.Image)
	assert.Equal(t, msg.DOB, profile.DOB)
	assert.True(t, profile.Valid())
}
