package teller_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/aussiebroadwan/teller/pkg/tellersdk"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helper functions for teller end-to-end tests.
 * This includes container setup, signup and login flows, and assertions.
 */

const (
	testImageName = "teller-test:latest"
	redisImage    = "redis:7-alpine"

	adminToken   = "test-admin-token-12345"
	testPassword = "Secret12!"
)

// TestMain builds the Docker image once before all tests and cleans it up
// after all tests complete.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building Teller Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up Teller Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/teller/Dockerfile",
		"../../../")
	cmd.Dir = "."
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // Ignore errors - image might not exist
}

type stackOptions struct {
	env          map[string]string
	withRedis    bool
	defaultLimit bool // keep production rate limits
}

type stackOption func(*stackOptions)

func withEnv(key, value string) stackOption {
	return func(o *stackOptions) { o.env[key] = value }
}

func withRedis() stackOption {
	return func(o *stackOptions) { o.withRedis = true }
}

func withDefaultRateLimits() stackOption {
	return func(o *stackOptions) { o.defaultLimit = true }
}

// setupTeller starts teller (and optionally Redis on a shared network) and
// returns an SDK client pointed at it. Containers are terminated on cleanup.
func setupTeller(t *testing.T, opts ...stackOption) *tellersdk.SDKClient {
	t.Helper()
	ctx := context.Background()

	o := stackOptions{env: map[string]string{}}
	for _, opt := range opts {
		opt(&o)
	}

	env := map[string]string{
		"TELLER_ISSUER":        "teller-e2e",
		"TELLER_COOKIE_SECURE": "false",
		"ADMIN_TOKEN":          adminToken,
		"ENV":                  "test",
		"LOG_LEVEL":            "info",
		"LOG_FORMAT":           "json",
	}
	if !o.defaultLimit {
		// Tests make many rapid requests which would otherwise hit the
		// strict production limits.
		env["RATELIMIT_STRICT_REQUESTS"] = "1000"
		env["RATELIMIT_STRICT_BURST"] = "1000"
		env["RATELIMIT_MODERATE_REQUESTS"] = "1000"
		env["RATELIMIT_MODERATE_BURST"] = "1000"
		env["RATELIMIT_LENIENT_REQUESTS"] = "1000"
		env["RATELIMIT_LENIENT_BURST"] = "1000"
	}

	var networks []string
	if o.withRedis {
		nw, err := network.New(ctx)
		require.NoError(t, err)
		t.Cleanup(func() {
			if err := nw.Remove(ctx); err != nil {
				t.Logf("failed to remove network: %v", err)
			}
		})
		networks = []string{nw.Name}

		redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:          redisImage,
				ExposedPorts:   []string{"6379/tcp"},
				Networks:       networks,
				NetworkAliases: map[string][]string{nw.Name: {"redis"}},
				WaitingFor:     wait.ForLog("Ready to accept connections"),
			},
			Started: true,
		})
		require.NoError(t, err)
		t.Cleanup(func() { terminate(t, redisC) })

		env["REDIS_ADDR"] = "redis:6379"
	}

	for k, v := range o.env {
		env[k] = v
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        testImageName,
			ExposedPorts: []string{"8080/tcp"},
			Env:          env,
			Networks:     networks,
			WaitingFor: wait.ForHTTP("/livez").
				WithPort("8080/tcp").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { terminate(t, container) })

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return tellersdk.NewSDKClient(fmt.Sprintf("http://%s:%s", host, mappedPort.Port()))
}

func terminate(t *testing.T, c testcontainers.Container) {
	if err := c.Terminate(context.Background()); err != nil {
		t.Logf("failed to terminate container: %v", err)
	}
}

// signupUser registers username with a complete profile.
func signupUser(t *testing.T, client *tellersdk.SDKClient, username string) *tellersdk.SignupResponse {
	t.Helper()

	resp, err := client.Signup(t.Context(), tellersdk.SignupRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: testPassword,
		SSN:      "123456789",
		Profile: tellersdk.Profile{
			FirstName: "Test",
			LastName:  "User",
			ZipCode:   "90210",
			Phone:     "5551234567",
		},
	})
	require.NoError(t, err, "Signup should succeed")
	require.Len(t, resp.Accounts, 2, "Signup should open checking and savings")

	return resp
}

// performLogin logs in and expects a session without an MFA step.
func performLogin(t *testing.T, client *tellersdk.SDKClient, identifier string) *tellersdk.Session {
	t.Helper()

	session, err := client.Login(t.Context(), identifier, testPassword)
	require.NoError(t, err, "Login should succeed")
	require.NotEmpty(t, session.Token())

	return session
}

// requireMFA asserts err is an MFA challenge and returns its token.
func requireMFA(t *testing.T, err error, setup bool) string {
	t.Helper()

	var mfaErr *tellersdk.MFARequiredError
	require.ErrorAs(t, err, &mfaErr)
	require.Equal(t, setup, mfaErr.SetupRequired)
	require.NotEmpty(t, mfaErr.MFAToken)

	return mfaErr.MFAToken
}

// currentCode returns the TOTP code for secret, waiting out the last two
// seconds of a step so the code is still valid when it reaches the server.
func currentCode(t *testing.T, secret string) string {
	t.Helper()

	now := time.Now()
	if rem := 30 - now.Unix()%30; rem <= 2 {
		time.Sleep(time.Duration(rem)*time.Second + 100*time.Millisecond)
		now = time.Now()
	}

	code, err := totp.GenerateCode(secret, now)
	require.NoError(t, err)
	return code
}

// wrongCode returns a six digit code that differs from the current one in
// every position.
func wrongCode(t *testing.T, secret string) string {
	t.Helper()

	code := []byte(currentCode(t, secret))
	for i, c := range code {
		code[i] = '0' + (c-'0'+1)%10
	}
	return string(code)
}

// requireAPIError asserts err is an *APIError with status and code.
func requireAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()

	var apiErr *tellersdk.APIError
	require.True(t, errors.As(err, &apiErr), "expected *APIError, got %v", err)
	require.Equal(t, status, apiErr.StatusCode)
	require.Equal(t, code, apiErr.Code)
}
