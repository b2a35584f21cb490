package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

// runCLI ejecuta farmctl contra una base SQLite del test, sin demoras simuladas.
func runCLI(t *testing.T, dbPath, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("MOCK_ANALYSIS_DELAY", "0s")
	t.Setenv("MOCK_WEATHER_DELAY", "0s")
	t.Setenv("CHAT_REPLY_DELAY", "0s")
	t.Setenv("SQLITE_PATH", dbPath)
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("TTS_COMMAND", "")
	t.Setenv("SOLUTIONS_CSV", "")

	c := &cli{}
	root := newRootCmd(c)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--backend", "sqlite"}, args...))
	err := root.ExecuteContext(context.Background())
	c.teardown()
	return out.String(), err
}

func testDB(t *testing.T) string {
	return filepath.Join(t.TempDir(), "farmctl.db")
}

func TestChatTypedConversation(t *testing.T) {
	out, err := runCLI(t, testDB(t), "1\nhow much fertilizer for rice?\n/quit\n", "chat")
	require.NoError(t, err)

	assert.Contains(t, out, "Welcome to the Farming Assistant")
	assert.Contains(t, out, "[1] Pest identification help")
	assert.Contains(t, out, "Typing...")
	assert.Equal(t, 3, strings.Count(out, "assistant> "), "welcome plus two replies")
	assert.Contains(t, out, "Tell me more")
}

func TestChatSwitchLanguage(t *testing.T) {
	db := testDB(t)
	out, err := runCLI(t, db, "/lang hi\n/lang xx\n", "chat")
	require.NoError(t, err)
	assert.Contains(t, out, `unsupported language "xx"`)

	out, err = runCLI(t, db, "", "languages")
	require.NoError(t, err)
	assert.Contains(t, out, "* hi ")
}

func TestChatVoiceDictation(t *testing.T) {
	out, err := runCLI(t, testDB(t), "soil ph is low\n", "chat", "--voice", "--lang", "en")
	require.NoError(t, err)

	assert.Contains(t, out, "Listening...")
	assert.Contains(t, out, "you> soil ph is low")
	assert.GreaterOrEqual(t, strings.Count(out, "assistant> "), 2)
}

func TestChatSpeakWithoutTTSWarnsOnce(t *testing.T) {
	out, err := runCLI(t, testDB(t), "pests\nirrigation\n", "chat", "--speak")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "Voice not supported"))
}

func TestAnalyzeSavesToHistory(t *testing.T) {
	db := testDB(t)
	img := filepath.Join(t.TempDir(), "leaf.png")
	require.NoError(t, os.WriteFile(img, pngBytes, 0o600))

	out, err := runCLI(t, db, "", "analyze", img)
	require.NoError(t, err)
	assert.Contains(t, out, "Saved to history")

	out, err = runCLI(t, db, "", "history", "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	id := strings.Fields(lines[0])[0]

	_, err = runCLI(t, db, "", "history", "remove", id)
	require.NoError(t, err)
	_, err = runCLI(t, db, "", "history", "remove", id)
	assert.Error(t, err)

	out, err = runCLI(t, db, "", "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "no saved diagnoses")
}

func TestAnalyzeRejectsNonImage(t *testing.T) {
	notes := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("not a photo"), 0o600))

	_, err := runCLI(t, testDB(t), "", "analyze", notes)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid file type")
}

func TestWeather(t *testing.T) {
	db := testDB(t)
	out, err := runCLI(t, db, "", "weather", "Nashik")
	require.NoError(t, err)
	assert.Contains(t, out, "Nashik")
	assert.Contains(t, out, "Weather Summary")

	_, err = runCLI(t, db, "", "weather")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Location Required")

	out, err = runCLI(t, db, "", "weather", "--lat", "18.52", "--lon", "73.85")
	require.NoError(t, err)
	assert.Contains(t, out, "Lat: 18.52, Lon: 73.85")
}

func TestTranslate(t *testing.T) {
	out, err := runCLI(t, testDB(t), "", "translate", "--lang", "es", "home", "missingKey")
	require.NoError(t, err)
	assert.Contains(t, out, "home\tInicio")
	assert.Contains(t, out, "missingKey\tmissingKey")
}

func TestTreatment(t *testing.T) {
	db := testDB(t)
	out, err := runCLI(t, db, "", "treatment", "Apple___Apple_scab")
	require.NoError(t, err)
	assert.Contains(t, out, "Captan 50% WP")

	_, err = runCLI(t, db, "", "treatment", "Mango___Nothing")
	assert.Error(t, err)
}
