package storage

import "testing"

func TestS3Storage_PublicURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		key     string
		want    string
	}{
		{"regional endpoint", "", "covers/a.png", "https://assets.s3.eu-west-1.amazonaws.com/covers/a.png"},
		{"custom base", "https://cdn.example.com/", "covers/a.png", "https://cdn.example.com/covers/a.png"},
		{"leading slash", "https://cdn.example.com", "/covers/b.webp", "https://cdn.example.com/covers/b.webp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewS3Storage(nil, "assets", "eu-west-1", tt.baseURL)
			if got := s.PublicURL(tt.key); got != tt.want {
				t.Errorf("PublicURL(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}
