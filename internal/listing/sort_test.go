package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTopicSortOption(t *testing.T) {
	tests := []struct {
		name    string
		want    TopicSortOption
		wantErr bool
	}{
		{"votes", SortVotes, false},
		{"comments", SortComments, false},
		{"new", SortNew, false},
		{"activity", SortActivity, false},
		{" Activity ", 0, true},
		{"Votes", 0, true},
		{"votes ", 0, true},
		{"hot", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTopicSortOption(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownSortOption)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTopicSortOptionRoundTrip(t *testing.T) {
	for _, option := range AllSortOptions() {
		parsed, err := ParseTopicSortOption(option.String())
		require.NoError(t, err)
		assert.Equal(t, option, parsed)
		assert.True(t, option.Valid())
	}
}

func TestTopicSortOptionInvalid(t *testing.T) {
	var zero TopicSortOption
	assert.False(t, zero.Valid())
	assert.False(t, TopicSortOption(99).Valid())

	_, err := TopicSortOption(99).column()
	assert.ErrorIs(t, err, ErrUnknownSortOption)
	_, err = TopicSortOption(99).valueOf(nil)
	assert.ErrorIs(t, err, ErrUnknownSortOption)
}

func TestDescendingDescription(t *testing.T) {
	assert.Equal(t, "most votes", SortVotes.DescendingDescription())
	assert.Equal(t, "most comments", SortComments.DescendingDescription())
	assert.Equal(t, "newest", SortNew.DescendingDescription())
	assert.Equal(t, "activity", SortActivity.DescendingDescription())
}
