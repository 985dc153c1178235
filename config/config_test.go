package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

func TestGetters(t *testing.T) {
	cfg := map[string]string{
		"PORT":          "8081",
		"BAD_INT":       "eighty",
		"MAX":           "10485760",
		"AUTO":          "true",
		"BAD_BOOL":      "maybe",
		"ORIGINS":       "http://a.test, ,http://b.test",
		"EMPTY_ORIGINS": "",
	}

	if got := GetString(cfg, "PORT", "80"); got != "8081" {
		t.Errorf("GetString = %q", got)
	}
	if got := GetString(nil, "PORT", "80"); got != "80" {
		t.Errorf("GetString(nil) = %q", got)
	}
	if got := GetInt(cfg, "PORT", 80); got != 8081 {
		t.Errorf("GetInt = %d", got)
	}
	if got := GetInt(cfg, "BAD_INT", 80); got != 80 {
		t.Errorf("GetInt(bad) = %d", got)
	}
	if got := GetInt64(cfg, "MAX", 1); got != 10485760 {
		t.Errorf("GetInt64 = %d", got)
	}
	if got := GetBool(cfg, "AUTO", false); !got {
		t.Error("GetBool(AUTO) = false")
	}
	if got := GetBool(cfg, "BAD_BOOL", true); !got {
		t.Error("GetBool(bad) should fall back to the default")
	}
	if got := GetList(cfg, "ORIGINS"); len(got) != 2 || got[0] != "http://a.test" || got[1] != "http://b.test" {
		t.Errorf("GetList = %v", got)
	}
	if got := GetList(cfg, "EMPTY_ORIGINS"); got != nil {
		t.Errorf("GetList(empty) = %v", got)
	}
}

func TestLoad_ReadsDotEnvWithoutOverriding(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("BLOG_TEST_FROM_FILE=file\nBLOG_TEST_SHADOWED=file\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BLOG_TEST_SHADOWED", "env")
	t.Cleanup(func() { os.Unsetenv("BLOG_TEST_FROM_FILE") })

	cfg, err := Load(envFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg["BLOG_TEST_FROM_FILE"] != "file" {
		t.Errorf("BLOG_TEST_FROM_FILE = %q", cfg["BLOG_TEST_FROM_FILE"])
	}
	if cfg["BLOG_TEST_SHADOWED"] != "env" {
		t.Errorf("BLOG_TEST_SHADOWED = %q, environment should win", cfg["BLOG_TEST_SHADOWED"])
	}
}

func TestLoad_MissingFileIsFine(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("Load(missing) = %v", err)
	}
}

// pagedSSM serves pages in order, keyed by NextToken
type pagedSSM struct {
	pages []*ssm.GetParametersByPathOutput
	calls int
	err   error
}

func (p *pagedSSM) GetParametersByPath(_ context.Context, in *ssm.GetParametersByPathInput, _ ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error) {
	if p.err != nil {
		return nil, p.err
	}
	if aws.ToString(in.Path) != "/blog/prod" || !aws.ToBool(in.WithDecryption) {
		return nil, errors.New("unexpected input")
	}
	page := p.pages[p.calls]
	p.calls++
	return page, nil
}

func param(name, value string) types.Parameter {
	return types.Parameter{Name: aws.String(name), Value: aws.String(value)}
}

func TestLoadSSM(t *testing.T) {
	client := &pagedSSM{pages: []*ssm.GetParametersByPathOutput{
		{
			Parameters: []types.Parameter{
				param("/blog/prod/jwt-secret", "s3cret"),
				param("/blog/prod/database.url", "postgres://db"),
			},
			NextToken: aws.String("page-2"),
		},
		{
			Parameters: []types.Parameter{
				param("/blog/prod/s3/bucket", "covers"),
				param("/blog/prod/port", "9999"),
			},
		},
	}}
	cfg := map[string]string{"PORT": "8081"}

	n, err := LoadSSM(context.Background(), client, "/blog/prod", cfg)
	if err != nil {
		t.Fatalf("LoadSSM: %v", err)
	}
	if n != 3 || client.calls != 2 {
		t.Errorf("set %d keys over %d calls", n, client.calls)
	}

	want := map[string]string{
		"JWT_SECRET":   "s3cret",
		"DATABASE_URL": "postgres://db",
		"S3_BUCKET":    "covers",
		"PORT":         "8081",
	}
	for key, value := range want {
		if cfg[key] != value {
			t.Errorf("cfg[%s] = %q, want %q", key, cfg[key], value)
		}
	}
}

func TestLoadSSM_Error(t *testing.T) {
	client := &pagedSSM{err: errors.New("access denied")}

	if _, err := LoadSSM(context.Background(), client, "/blog/prod", map[string]string{}); err == nil {
		t.Error("expected an error")
	}
}
