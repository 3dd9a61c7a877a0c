package playlist

import "testing"

func TestGroupTitle(t *testing.T) {
	tt := []struct {
		name   string
		line   string
		want   string
		wantOK bool
	}{
		{
			name:   "simple",
			line:   `#EXTINF:-1 group-title="Sports",Channel 1` + "\n",
			want:   "Sports",
			wantOK: true,
		},
		{
			name:   "among other attributes",
			line:   `#EXTINF:-1 tvg-id="c1" tvg-logo="http://x/l.png" group-title="UK | News" tvg-name="C1",C1`,
			want:   "UK | News",
			wantOK: true,
		},
		{
			name:   "absent",
			line:   `#EXTINF:-1 tvg-id="c1",Channel`,
			wantOK: false,
		},
		{
			name:   "empty value is absent",
			line:   `#EXTINF:-1 group-title="",Channel`,
			wantOK: false,
		},
		{
			name:   "empty value then later non-empty",
			line:   `#EXTINF:-1 group-title="" group-title="Movies",Channel`,
			want:   "Movies",
			wantOK: true,
		},
		{
			name:   "unterminated",
			line:   `#EXTINF:-1 group-title="Sports,Channel` + "\n",
			wantOK: false,
		},
		{
			name:   "single quotes are not recognised",
			line:   `#EXTINF:-1 group-title='Sports',Channel`,
			wantOK: false,
		},
		{
			name:   "keeps case and spaces",
			line:   `#EXTINF:-1 group-title="  Kids TV ",Channel`,
			want:   "  Kids TV ",
			wantOK: true,
		},
		{
			name:   "crlf terminated",
			line:   `#EXTINF:-1 group-title="News",Channel` + "\r\n",
			want:   "News",
			wantOK: true,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := GroupTitle(tc.line)
			if ok != tc.wantOK {
				t.Fatalf("GroupTitle() ok = %v, want %v", ok, tc.wantOK)
			}
			if got != tc.want {
				t.Errorf("GroupTitle() = %q, want %q", got, tc.want)
			}
		})
	}
}
