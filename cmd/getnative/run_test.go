package main

import (
	"bytes"
	"context"
	"image"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/dixieflatline76/getnative/config"
	"github.com/dixieflatline76/getnative/pkg/native"
	"github.com/dixieflatline76/getnative/ui/plotview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeUpscaled saves a random 60x40 image upscaled to 96x64.
func writeUpscaled(t *testing.T, dir string) string {
	t.Helper()
	rng := rand.New(rand.NewPCG(5, 8))
	small := image.NewGray(image.Rect(0, 0, 60, 40))
	for i := range small.Pix {
		small.Pix[i] = uint8(rng.IntN(256))
	}
	big := imaging.Resize(small, 96, 64, imaging.CatmullRom)

	path := filepath.Join(dir, "frame.png")
	require.NoError(t, imaging.Save(big, path))
	return path
}

func noPlots(t *testing.T) *[]plotview.Plot {
	t.Helper()
	var shown []plotview.Plot
	orig := showPlots
	showPlots = func(p []plotview.Plot) { shown = p }
	t.Cleanup(func() { showPlots = orig })
	return &shown
}

func TestRunGetnative(t *testing.T) {
	shown := noPlots(t)
	dir := t.TempDir()
	input := writeUpscaled(t, dir)

	cfg := config.Default()
	cfg.Passes = 1
	cfg.OutputDir = dir
	cfg.ShowPlotGUI = true
	cfg.MetricsFile = filepath.Join(dir, "getnative.prom")

	var out, errOut bytes.Buffer
	require.NoError(t, runGetnative(context.Background(), cfg, input, &out, &errOut))

	assert.Regexp(t, `Bicubic b 0.33 c 0.33 AR: \d+\.\d\d \d+ x \d+ MAE: `, out.String())
	assert.Regexp(t, `(Native scaling best guess|The estimation does not converge)`, out.String())
	assert.Contains(t, out.String(), "Output Path: "+filepath.Join(dir, "results"))
	assert.Contains(t, out.String(), "done in ")
	assert.Contains(t, errOut.String(), "final_confirm")

	matches, err := filepath.Glob(filepath.Join(dir, "results", "f_0_0_1_Bicubic_b_0.33_c_0.33_ar_1.50_steps_1.*"))
	require.NoError(t, err)
	assert.Len(t, matches, 2) // .txt and .png

	prom, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `getnative_oracle_evaluations_total{phase="final_confirm"}`)

	require.Len(t, *shown, 1)
	assert.Equal(t, "Bicubic b 0.33 c 0.33", (*shown)[0].Title)
}

func TestRunGetnativeNoSave(t *testing.T) {
	noPlots(t)
	dir := t.TempDir()
	input := writeUpscaled(t, dir)

	cfg := config.Default()
	cfg.Passes = 0
	cfg.NoSave = true
	cfg.OutputDir = dir
	cfg.Mode = "bilinear"

	var out bytes.Buffer
	require.NoError(t, runGetnative(context.Background(), cfg, input, &out, &bytes.Buffer{}))
	assert.NotContains(t, out.String(), "Output Path")

	_, err := os.Stat(filepath.Join(dir, "results"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunGetnativeConfigurationErrors(t *testing.T) {
	noPlots(t)
	dir := t.TempDir()
	input := writeUpscaled(t, dir)

	tests := []struct {
		name   string
		input  string
		mutate func(*config.Config)
	}{
		{"min height above input", input, func(c *config.Config) { c.MinHeight = 100 }},
		{"bad plot scaling", input, func(c *config.Config) { c.PlotScaling = "cubic" }},
		{"missing output dir", input, func(c *config.Config) { c.OutputDir = filepath.Join(dir, "missing") }},
		{"unsupported input", filepath.Join(dir, "clip.mkv"), func(c *config.Config) {}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.OutputDir = dir
			tt.mutate(&cfg)
			err := runGetnative(context.Background(), cfg, tt.input, &bytes.Buffer{}, &bytes.Buffer{})
			assert.ErrorIs(t, err, native.ErrConfiguration)
		})
	}
}

func TestProgressFinish(t *testing.T) {
	var buf bytes.Buffer
	p := newProgress(&buf)

	p.Finish()
	assert.Empty(t, buf.String())

	p.Update(native.Progress{Phase: native.PhaseHeightScan, Done: 4, Total: 4})
	p.Finish()
	assert.Equal(t, "\rheight_scan   pass 1 frame 1: 100%\n", buf.String())
}

