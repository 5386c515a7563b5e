package models

import (
	"reflect"
	"testing"
	"time"
)

func TestFitbitToken_ExpiryPredicates(t *testing.T) {
	tests := []struct {
		name        string
		expiresIn   time.Duration
		isExpired   bool
		expiresSoon bool
	}{
		{name: "already expired", expiresIn: -time.Second, isExpired: true, expiresSoon: true},
		{name: "expires in 4 minutes", expiresIn: 4 * time.Minute, isExpired: false, expiresSoon: true},
		{name: "expires in an hour", expiresIn: time.Hour, isExpired: false, expiresSoon: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := FitbitToken{ExpiresAt: time.Now().Add(tt.expiresIn)}
			if got := tok.IsExpired(); got != tt.isExpired {
				t.Errorf("IsExpired() = %v, want %v", got, tt.isExpired)
			}
			if got := tok.ExpiresSoon(); got != tt.expiresSoon {
				t.Errorf("ExpiresSoon() = %v, want %v", got, tt.expiresSoon)
			}
		})
	}
}

func TestFitbitToken_ScopeList(t *testing.T) {
	tok := FitbitToken{Scopes: "activity heartrate sleep"}
	want := []string{"activity", "heartrate", "sleep"}
	if got := tok.ScopeList(); !reflect.DeepEqual(got, want) {
		t.Fatalf("ScopeList() = %v, want %v", got, want)
	}

	empty := FitbitToken{}
	if got := empty.ScopeList(); got != nil {
		t.Fatalf("expected nil scope list for empty scopes, got %v", got)
	}
}
