package cli

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/emiliopalmerini/experimenter/internal/domain"
	"github.com/emiliopalmerini/experimenter/internal/recipe"
)

func createExperiment(t *testing.T, app *AppContext, name string) {
	t.Helper()
	resetFlags(t)

	expAudience = "us_only"
	expMinVersion = "80.0"
	expFeatures = []string{"pinned_tabs"}
	expOwner = "owner@example.com"
	cmd, _ := testCmd(t)
	if err := runExperimentCreate(cmd, app, []string{name}); err != nil {
		t.Fatalf("create %q failed: %v", name, err)
	}
	expAudience, expMinVersion, expFeatures, expOwner = "", "", nil, ""
}

func addBranches(t *testing.T, app *AppContext, experiment string) {
	t.Helper()
	resetFlags(t)

	for _, b := range []struct {
		slug    string
		control bool
	}{{"control", true}, {"treatment", false}} {
		variantRatio, variantControl = 50, b.control
		cmd, _ := testCmd(t)
		if err := runVariantAdd(cmd, app, []string{experiment, b.slug}); err != nil {
			t.Fatalf("add branch %s failed: %v", b.slug, err)
		}
	}
	variantRatio, variantControl = 0, false
}

func TestExperimentCommands(t *testing.T) {
	app := testApp(t)
	createExperiment(t, app, "Pinned Tabs")
	createExperiment(t, app, "Another One")

	cmd, out := testCmd(t)
	expSort = "name"
	if err := runExperimentList(cmd, app, nil); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got:\n%s", out.String())
	}
	if !strings.HasPrefix(lines[1], "another-one") || !strings.HasPrefix(lines[2], "pinned-tabs") {
		t.Errorf("unexpected order:\n%s", out.String())
	}

	cmd, out = testCmd(t)
	if err := runExperimentSetType(cmd, app, []string{"pinned-tabs", "rollout"}); err != nil {
		t.Fatalf("set-type failed: %v", err)
	}
	if !strings.Contains(out.String(), "Staged Rollout") {
		t.Errorf("unexpected output %q", out.String())
	}

	cmd, _ = testCmd(t)
	err := runExperimentSetType(cmd, app, []string{"pinned-tabs", "message"})
	if !errors.Is(err, domain.ErrInvalidType) {
		t.Errorf("expected ErrInvalidType, got %v", err)
	}

	cmd, out = testCmd(t)
	if err := runExperimentShow(cmd, app, []string{"pinned-tabs"}); err != nil {
		t.Fatalf("show failed: %v", err)
	}
	for _, want := range []string{"Pinned Tabs", "us_only", "Editable:     true"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("show output missing %q:\n%s", want, out.String())
		}
	}

	cmd, _ = testCmd(t)
	if err := runExperimentDelete(cmd, app, []string{"another-one"}); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	cmd, _ = testCmd(t)
	if err := runExperimentShow(cmd, app, []string{"another-one"}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestExperimentCreate_Duplicate(t *testing.T) {
	app := testApp(t)
	createExperiment(t, app, "Twice")

	cmd, _ := testCmd(t)
	if err := runExperimentCreate(cmd, app, []string{"Twice"}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestExperimentUpdate(t *testing.T) {
	app := testApp(t)
	createExperiment(t, app, "Edited")
	resetFlags(t)

	cmd, out := testCmd(t)
	f := cmd.Flags()
	f.StringVar(&expAudience, "audience", "", "")
	f.StringVar(&expMinVersion, "min-version", "", "")
	f.IntVar(&expEnrollment, "enrollment", domain.DefaultProposedEnrollment, "")
	for name, value := range map[string]string{"audience": "all_english", "min-version": "95.0", "enrollment": "21"} {
		if err := f.Set(name, value); err != nil {
			t.Fatalf("set --%s: %v", name, err)
		}
	}

	if err := runExperimentUpdate(cmd, app, []string{"edited"}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !strings.Contains(out.String(), "Updated experiment: edited (audience all_english, min version 95.0, 21 days)") {
		t.Errorf("unexpected output %q", out.String())
	}

	exp, err := app.Experiments.Get(context.Background(), "edited")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(exp.Features) != 1 || exp.Owner != "owner@example.com" {
		t.Errorf("flags left unset changed the experiment: %+v", exp)
	}

	cmd, _ = testCmd(t)
	cmd.Flags().StringVar(&expAudience, "audience", "", "")
	if err := cmd.Flags().Set("audience", "martians"); err != nil {
		t.Fatalf("set --audience: %v", err)
	}
	if err := runExperimentUpdate(cmd, app, []string{"edited"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestVariantCommands(t *testing.T) {
	app := testApp(t)
	createExperiment(t, app, "Branches")
	addBranches(t, app, "branches")

	resetFlags(t)
	variantValue = "{not json"
	cmd, _ := testCmd(t)
	if err := runVariantAdd(cmd, app, []string{"branches", "broken"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for bad JSON, got %v", err)
	}
	variantValue = ""

	variantControl = true
	cmd, _ = testCmd(t)
	if err := runVariantAdd(cmd, app, []string{"branches", "second-control"}); !errors.Is(err, domain.ErrMultipleControls) {
		t.Errorf("expected ErrMultipleControls, got %v", err)
	}
	variantControl = false

	cmd, out := testCmd(t)
	if err := runVariantList(cmd, app, []string{"branches"}); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[1], "treatment") {
		t.Errorf("expected branches by slug descending:\n%s", out.String())
	}
}

func TestVariantAddSplitsEvenly(t *testing.T) {
	app := testApp(t)
	createExperiment(t, app, "Split")
	addBranches(t, app, "split")

	cmd, out := testCmd(t)
	if err := runVariantAdd(cmd, app, []string{"split", "holdout"}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if !strings.Contains(out.String(), "(ratio 33)") {
		t.Errorf("expected an even split, got %q", out.String())
	}

	variants, err := app.Experiments.Variants(context.Background(), "split")
	if err != nil {
		t.Fatalf("Variants failed: %v", err)
	}
	for _, v := range variants {
		if v.Ratio != 33 {
			t.Errorf("variant %s: expected ratio 33, got %d", v.Slug, v.Ratio)
		}
	}
}

func TestBucketCommands(t *testing.T) {
	app := testApp(t)
	createExperiment(t, app, "Bucketed")
	resetFlags(t)

	cmd, out := testCmd(t)
	if err := runBucketRequest(cmd, app, []string{"bucketed"}); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if !strings.Contains(out.String(), "Buckets 0-99 of 10000 in bucketed #1") {
		t.Errorf("unexpected output %q", out.String())
	}

	bucketCount = 500
	cmd, out = testCmd(t)
	if err := runBucketRequest(cmd, app, []string{"bucketed"}); err != nil {
		t.Fatalf("second request failed: %v", err)
	}
	if !strings.Contains(out.String(), "Buckets 0-99") {
		t.Errorf("expected the existing range back, got %q", out.String())
	}

	cmd, out = testCmd(t)
	if err := runBucketList(cmd, app, []string{"bucketed"}); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if strings.Count(out.String(), "\n") != 2 {
		t.Errorf("expected one allocation:\n%s", out.String())
	}
}

func TestRecipeCommands(t *testing.T) {
	app := testApp(t)
	createExperiment(t, app, "Shipping")
	addBranches(t, app, "shipping")

	cmd, out := testCmd(t)
	if err := runRecipeShow(cmd, app, []string{"shipping"}); err != nil {
		t.Fatalf("show failed: %v", err)
	}
	var preview recipe.Recipe
	if err := json.Unmarshal(out.Bytes(), &preview); err != nil {
		t.Fatalf("show did not print a recipe: %v", err)
	}
	if preview.FilterExpression != "env.version|versionCompare('80.0') >= 0" {
		t.Errorf("unexpected filter expression %q", preview.FilterExpression)
	}

	cmd, out = testCmd(t)
	if err := runRecipeList(cmd, app, nil); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "No published recipes") {
		t.Errorf("show should not store a recipe:\n%s", out.String())
	}

	cmd, _ = testCmd(t)
	if err := runRecipePublish(cmd, app, []string{"shipping"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	cmd, out = testCmd(t)
	if err := runRecipeGet(cmd, app, []string{"shipping"}); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if err := recipe.Validate(out.Bytes()); err != nil {
		t.Errorf("published recipe does not validate: %v", err)
	}

	dir := filepath.Join(t.TempDir(), "export")
	cmd, _ = testCmd(t)
	if err := runRecipeExport(cmd, app, []string{dir}); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "shipping.json")); err != nil {
		t.Errorf("expected exported recipe: %v", err)
	}

	cmd, _ = testCmd(t)
	if err := runExperimentDelete(cmd, app, []string{"shipping"}); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	cmd, _ = testCmd(t)
	if err := runRecipeGet(cmd, app, []string{"shipping"}); err == nil {
		t.Error("expected the snapshot to be deleted with the experiment")
	}
}

func TestRecipeValidate(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"id":1,"arguments":{}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd, out := testCmd(t)
	err := runRecipeValidate(cmd, []string{bad})
	var ve *recipe.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(out.String(), "/id") {
		t.Errorf("expected the /id violation to be printed:\n%s", out.String())
	}

	cmd, _ = testCmd(t)
	cmd.SetIn(strings.NewReader("not json"))
	if err := runRecipeValidate(cmd, []string{"-"}); err == nil {
		t.Error("expected error for non-JSON input")
	}
}

func TestLifecycleCommands(t *testing.T) {
	app := testApp(t)
	createExperiment(t, app, "Launching")
	addBranches(t, app, "launching")
	resetFlags(t)

	cmd, _ := testCmd(t)
	if err := runLifecycleAction(domain.ActionLaunch)(cmd, app, []string{"launching"}); err == nil {
		t.Error("expected --by to be required")
	}

	lifecycleBy = "owner@example.com"
	cmd, out := testCmd(t)
	if err := runLifecycleAction(domain.ActionLaunch)(cmd, app, []string{"launching"}); err != nil {
		t.Fatalf("launch failed: %v", err)
	}
	if !strings.Contains(out.String(), "Draft/Idle -> Draft/Review") {
		t.Errorf("unexpected output %q", out.String())
	}

	lifecycleBy = "reviewer@example.com"
	cmd, _ = testCmd(t)
	if err := runLifecycleAction(domain.ActionApprove)(cmd, app, []string{"launching"}); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	cmd, out = testCmd(t)
	if err := runRecipePublish(cmd, app, []string{"launching"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if !strings.Contains(out.String(), "now Live/Idle") {
		t.Errorf("expected the launch to be applied, got %q", out.String())
	}

	cmd, _ = testCmd(t)
	err := runLifecycleAction(domain.ActionLaunch)(cmd, app, []string{"launching"})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}

	cmd, out = testCmd(t)
	if err := runLifecycleHistory(cmd, app, []string{"launching"}); err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if got := strings.Count(out.String(), "\n"); got != 4 {
		t.Errorf("expected header and 3 entries, got %d lines:\n%s", got, out.String())
	}
}
