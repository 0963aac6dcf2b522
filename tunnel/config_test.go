package tunnel

import (
	"errors"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	file := filepath.Join(t.TempDir(), CONFIG_NAME)
	if err := ioutil.WriteFile(file, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return file
}

func Test_config_template_roundtrip(t *testing.T) {
	file := filepath.Join(t.TempDir(), CONFIG_NAME)
	if err := CreateConfigTemplate(file); err != nil {
		t.Fatal(err)
	}
	raw, _ := ioutil.ReadFile(file)
	for _, s := range []string{"[dhdemo.Group]", "[dhdemo.Exchange]", "Prime", "tcp://127.0.0.1:9011"} {
		if !strings.Contains(string(raw), s) {
			t.Fatalf("template misses %q:\n%s", s, raw)
		}
	}

	cc, err := DetectConfig(file)
	if err != nil {
		t.Fatal(err)
	}
	def := DefaultConfig()
	if *cc.Group() != *def.Group() {
		t.Fatalf("group %+v != %+v", cc.Group(), def.Group())
	}
	if cc.Exchange().GetTransport().String() != def.Exchange().GetTransport().String() {
		t.Fatalf("transport %s", cc.Exchange().GetTransport())
	}
	if cc.File() != file || cc.LogV() != 1 {
		t.Fatalf("file=%s v=%d", cc.File(), cc.LogV())
	}
}

func Test_config_values(t *testing.T) {
	file := writeConfig(t, `
[dhdemo.Group]
Alpha = 3
Prime = 65537
MaxModulus = 100000
Verbose = 3

[dhdemo.Exchange]
Transport = kcp://10.0.0.1:9000/turbo
PrivateKey = 1234
Timeout = 3
`)
	cc, err := DetectConfig(file)
	if err != nil {
		t.Fatal(err)
	}
	g, e := cc.Group(), cc.Exchange()
	if g.Alpha != 3 || g.Prime != 65537 || g.MaxModulus != 100000 || g.CacheSize != 16 || cc.LogV() != 3 {
		t.Fatalf("group=%+v", g)
	}
	if e.PrivateKey != 1234 || e.GetTimeout().Seconds() != 3 || e.GetTransport().TransType() != "kcp" {
		t.Fatalf("exchange=%+v", e)
	}
}

func Test_config_errors(t *testing.T) {
	var cases = []struct {
		content string
		err     error
	}{
		{"[other]\nx = 1\n", CONF_MISS},
		{"[dhdemo.Group]\nPrime = 15\n", CONF_ERROR},
		{"[dhdemo.Group]\nPrime = 70001\n", CONF_ERROR},
		{"[dhdemo.Group]\nAlpha = 0\n", CONF_MISS},
		{"[dhdemo.Group]\n[dhdemo.Exchange]\nTransport = udp://h:1\n", CONF_ERROR},
		{"[dhdemo.Group]\n[dhdemo.Exchange]\nTimeout = -1\n", CONF_ERROR},
	}
	for _, c := range cases {
		if _, err := DetectConfig(writeConfig(t, c.content)); !errors.Is(err, c.err) {
			t.Fatalf("%q: err=%v", c.content, err)
		}
	}
}

func Test_config_not_found(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nothing.ini")
	if _, err := DetectConfig(missing); !errors.Is(err, CONF_NOT_FOUND) {
		t.Fatalf("err=%v", err)
	}
}
