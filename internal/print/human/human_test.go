package human_test

import (
	"encoding/json"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stealthrocket/tracecraft/internal/assert"
	"github.com/stealthrocket/tracecraft/internal/print/human"
)

func TestParseDuration(t *testing.T) {
	for _, test := range []struct {
		in   string
		want time.Duration
	}{
		{in: "0s", want: 0},
		{in: "10s", want: 10 * time.Second},
		{in: "1.5ms", want: 1500 * time.Microsecond},
		{in: "2d", want: 48 * time.Hour},
		{in: "1 week", want: 7 * 24 * time.Hour},
		{in: "0.5w", want: 84 * time.Hour},
	} {
		t.Run(test.in, func(t *testing.T) {
			d, err := human.ParseDuration(test.in)
			assert.OK(t, err)
			assert.Equal(t, time.Duration(d), test.want)
		})
	}

	for _, in := range []string{"", "soon", "3 fortnights", "d"} {
		if _, err := human.ParseDuration(in); err == nil {
			t.Errorf("%q: expected an error", in)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	for _, test := range []struct {
		in   time.Duration
		want string
	}{
		{in: 0, want: "0s"},
		{in: 42, want: "42ns"},
		{in: 1500, want: "1.5µs"},
		{in: 12 * time.Millisecond, want: "12ms"},
		{in: 1534 * time.Millisecond, want: "1.53s"},
		{in: -250 * time.Millisecond, want: "-250ms"},
		{in: 90 * time.Second, want: "1m30s"},
		{in: 3 * time.Minute, want: "3m"},
		{in: 2 * time.Hour, want: "2h"},
		{in: 2*time.Hour + 10*time.Minute, want: "2h10m"},
	} {
		assert.Equal(t, human.Duration(test.in).String(), test.want)
	}
}

func TestDurationYAML(t *testing.T) {
	var config struct {
		StopTimeout human.Duration `yaml:"stopTimeout"`
	}
	assert.OK(t, yaml.Unmarshal([]byte("stopTimeout: 250ms\n"), &config))
	assert.Equal(t, config.StopTimeout, human.Duration(250*time.Millisecond))

	b, err := yaml.Marshal(config)
	assert.OK(t, err)
	assert.Equal(t, string(b), "stopTimeout: 250ms\n")

	err = yaml.Unmarshal([]byte("stopTimeout: [1, 2]\n"), &config)
	if err == nil {
		t.Fatal("expected an error decoding a sequence as a duration")
	}
}

func TestParseBytes(t *testing.T) {
	for _, test := range []struct {
		in   string
		want human.Bytes
	}{
		{in: "0", want: 0},
		{in: "4096", want: 4096},
		{in: "512 B", want: 512},
		{in: "4KiB", want: 4096},
		{in: "4 KB", want: 4000},
		{in: "1.5M", want: 3 << 19},
		{in: "2 GiB", want: 2 << 30},
	} {
		b, err := human.ParseBytes(test.in)
		assert.OK(t, err)
		assert.Equal(t, b, test.want)
	}

	if _, err := human.ParseBytes("12 pages"); err == nil {
		t.Error("expected an error for an unknown unit")
	}
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, human.Bytes(0).String(), "0 B")
	assert.Equal(t, human.Bytes(1023).String(), "1023 B")
	assert.Equal(t, human.Bytes(96*1024).String(), "96.0 KiB")
	assert.Equal(t, human.Bytes(3<<19).String(), "1.5 MiB")
	assert.Equal(t, human.Bytes(5<<40).String(), "5.0 TiB")
}

func TestBytesJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Size human.Bytes `json:"size"`
	}{Size: 4096})
	assert.OK(t, err)
	assert.Equal(t, string(b), `{"size":4096}`)

	var size human.Bytes
	assert.OK(t, json.Unmarshal([]byte(`"64 KiB"`), &size))
	assert.Equal(t, size, 64*human.KiB)
}

func TestTimeSince(t *testing.T) {
	now := time.Date(2023, 7, 14, 12, 0, 0, 0, time.UTC)
	for _, test := range []struct {
		at   time.Time
		want string
	}{
		{at: now, want: "now"},
		{at: now.Add(-45 * time.Second), want: "45s ago"},
		{at: now.Add(-2*time.Hour - 30*time.Minute), want: "2h ago"},
		{at: now.Add(-50 * time.Hour), want: "2d ago"},
		{at: now.Add(15 * 24 * time.Hour), want: "in 2w"},
		{at: time.Time{}, want: "(none)"},
	} {
		assert.Equal(t, human.Time(test.at).Since(now), test.want)
	}
}

func TestTimeJSON(t *testing.T) {
	at := time.Date(2023, 7, 14, 12, 0, 0, 0, time.UTC)
	b, err := json.Marshal(human.Time(at))
	assert.OK(t, err)
	assert.Equal(t, string(b), `"2023-07-14T12:00:00Z"`)

	var got human.Time
	assert.OK(t, json.Unmarshal(b, &got))
	assert.Equal(t, time.Time(got).Equal(at), true)
}
