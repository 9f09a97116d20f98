package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeToken(t *testing.T) {
	paidDate := time.Date(2025, 5, 15, 14, 30, 45, 123456789, time.UTC)

	token := EncodeToken(paidDate, "acc-123")
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedTs, decodedID, err := DecodeToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, paidDate, decodedTs, "Timestamp should match after decode")
	assert.Equal(t, "acc-123", decodedID, "Identifier should match after decode")

	// Identifiers containing the separator survive a round trip.
	pipeToken := EncodeToken(paidDate, "acc|with|pipes")
	_, decodedID, err = DecodeToken(pipeToken)
	assert.NoError(t, err)
	assert.Equal(t, "acc|with|pipes", decodedID)
}

func TestDecodeTokenError(t *testing.T) {
	_, _, err := DecodeToken("this is not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode", "Error should mention base64 decoding")

	// Base64 encoded date without separator
	invalidToken := "MjAyMy0wNS0xNVQwMDowMDowMFo="
	_, _, err = DecodeToken(invalidToken)
	assert.Error(t, err, "Should return an error for invalid token format")
	assert.Contains(t, err.Error(), "split", "Error should mention splitting issue")

	// Base64 encoded "notadate|acc-123"
	invalidDateToken := "bm90YWRhdGV8YWNjLTEyMw=="
	_, _, err = DecodeToken(invalidDateToken)
	assert.Error(t, err, "Should return an error for invalid timestamp format")
	assert.Contains(t, err.Error(), "timestamp parse", "Error should mention timestamp parsing issue")
}

func TestEncodeDateBasedToken(t *testing.T) {
	testDate := time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC)
	token := EncodeDateBasedToken(testDate)

	decodedDate, err := DecodeDateBasedToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, testDate, decodedDate, "Date should match after decode")

	now := time.Now().UTC()
	decodedNow, err := DecodeDateBasedToken(EncodeDateBasedToken(now))
	assert.NoError(t, err, "Decoding should not return an error")
	assert.True(t, now.Equal(decodedNow), "Date should match after decode")
}
