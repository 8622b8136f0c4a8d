package customize

import (
	"errors"
	"testing"

	"github.com/threadline/storefront/internal/domain"
)

func advanceToUploadDetails(t *testing.T, f *Flow) {
	t.Helper()
	if err := f.SelectMethod(domain.MethodEmbroidery); err != nil {
		t.Fatalf("SelectMethod: %v", err)
	}
	if err := f.SelectPosition("left_chest"); err != nil {
		t.Fatalf("SelectPosition: %v", err)
	}
	if err := f.ChooseLogoType(LogoTypeUpload); err != nil {
		t.Fatalf("ChooseLogoType: %v", err)
	}
}

func TestFlowHappyPathUpload(t *testing.T) {
	f := NewFlow()
	advanceToUploadDetails(t, f)

	if _, err := f.Finish(); !errors.Is(err, ErrIncomplete) {
		t.Fatalf("Finish without file: %v", err)
	}

	if err := f.SetUploadRef("upload-tmp-1"); err != nil {
		t.Fatalf("SetUploadRef: %v", err)
	}
	done, err := f.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if f.Step() != StepFinish {
		t.Fatalf("step = %s, want %s", f.Step(), StepFinish)
	}
	if done.Method != domain.MethodEmbroidery || done.Position != "left_chest" {
		t.Fatalf("customization = %+v", done)
	}
	if !done.NewUpload() {
		t.Fatal("upload customization not flagged as a new upload")
	}
}

func TestFlowHappyPathText(t *testing.T) {
	f := NewFlow()
	if err := f.SelectMethod(domain.MethodPrint); err != nil {
		t.Fatalf("SelectMethod: %v", err)
	}
	if err := f.SelectPosition("back_large"); err != nil {
		t.Fatalf("SelectPosition: %v", err)
	}
	if err := f.ChooseLogoType(LogoTypeText); err != nil {
		t.Fatalf("ChooseLogoType: %v", err)
	}

	if _, err := f.Finish(); !errors.Is(err, ErrIncomplete) {
		t.Fatalf("Finish without text: %v", err)
	}
	if err := f.SetTextDetails("Threadline Crew", "block", ""); err != nil {
		t.Fatalf("SetTextDetails: %v", err)
	}
	done, err := f.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if done.TextLine != "Threadline Crew" || done.Font != "block" {
		t.Fatalf("customization = %+v", done)
	}
	if done.NewUpload() {
		t.Fatal("text customization flagged as a new upload")
	}
}

func TestFlowRejectsInvalidInputs(t *testing.T) {
	f := NewFlow()

	if err := f.SelectMethod(domain.LogoMethod("laser")); !errors.Is(err, ErrInvalidMethod) {
		t.Fatalf("invalid method: %v", err)
	}
	if err := f.SelectPosition("left_chest"); !errors.Is(err, ErrInvalidStep) {
		t.Fatalf("position before method: %v", err)
	}
	if err := f.SelectMethod(domain.MethodEmbroidery); err != nil {
		t.Fatalf("SelectMethod: %v", err)
	}
	if err := f.SelectPosition("forehead"); !errors.Is(err, ErrInvalidPosition) {
		t.Fatalf("invalid position: %v", err)
	}
	if err := f.SelectPosition("nape"); err != nil {
		t.Fatalf("SelectPosition: %v", err)
	}
	if err := f.ChooseLogoType(LogoType("sticker")); !errors.Is(err, ErrInvalidLogoType) {
		t.Fatalf("invalid logo type: %v", err)
	}
}

func TestFlowBackPreservesData(t *testing.T) {
	f := NewFlow()
	advanceToUploadDetails(t, f)
	if err := f.SetUploadRef("upload-tmp-1"); err != nil {
		t.Fatalf("SetUploadRef: %v", err)
	}

	// Back out of the whole logo sub-flow: method and position survive.
	for _, want := range []Step{StepLogoTypeChoice, StepPositionSelect, StepMethodSelect} {
		if err := f.Back(); err != nil {
			t.Fatalf("Back: %v", err)
		}
		if f.Step() != want {
			t.Fatalf("step = %s, want %s", f.Step(), want)
		}
	}
	if err := f.Back(); !errors.Is(err, ErrAtStart) {
		t.Fatalf("Back at start: %v", err)
	}

	data := f.Data()
	if data.Method != domain.MethodEmbroidery || data.Position != "left_chest" || data.UploadRef != "upload-tmp-1" {
		t.Fatalf("data lost on Back: %+v", data)
	}
}

func TestFlowUploadAndPreviousLogoAreExclusive(t *testing.T) {
	f := NewFlow()
	advanceToUploadDetails(t, f)

	if err := f.SetUploadRef("upload-tmp-1"); err != nil {
		t.Fatalf("SetUploadRef: %v", err)
	}
	if err := f.SetPreviousLogo("https://cdn.example/logos/42.png"); err != nil {
		t.Fatalf("SetPreviousLogo: %v", err)
	}
	data := f.Data()
	if data.UploadRef != "" || data.PreviousLogoURL == "" {
		t.Fatalf("previous logo did not clear the upload: %+v", data)
	}
	if data.NewUpload() {
		t.Fatal("previous-logo reuse flagged as a new upload")
	}

	if err := f.SetUploadRef("upload-tmp-2"); err != nil {
		t.Fatalf("SetUploadRef: %v", err)
	}
	data = f.Data()
	if data.PreviousLogoURL != "" || data.UploadRef != "upload-tmp-2" {
		t.Fatalf("upload did not clear the previous logo: %+v", data)
	}
}

func TestFlowSanitizesText(t *testing.T) {
	f := NewFlow()
	if err := f.SelectMethod(domain.MethodEmbroidery); err != nil {
		t.Fatalf("SelectMethod: %v", err)
	}
	if err := f.SelectPosition("right_chest"); err != nil {
		t.Fatalf("SelectPosition: %v", err)
	}
	if err := f.ChooseLogoType(LogoTypeText); err != nil {
		t.Fatalf("ChooseLogoType: %v", err)
	}
	if err := f.SetTextDetails("  <script>alert(1)</script>Acme Ltd  ", "<b>serif</b>", ""); err != nil {
		t.Fatalf("SetTextDetails: %v", err)
	}

	data := f.Data()
	if data.TextLine != "Acme Ltd" {
		t.Fatalf("text line = %q", data.TextLine)
	}
	if data.Font != "serif" {
		t.Fatalf("font = %q", data.Font)
	}
}

func TestFlowReset(t *testing.T) {
	f := NewFlow()
	advanceToUploadDetails(t, f)
	_ = f.SetUploadRef("upload-tmp-1")

	f.Reset()
	if f.Step() != StepMethodSelect {
		t.Fatalf("step after reset = %s", f.Step())
	}
	if data := f.Data(); data != (Customization{}) {
		t.Fatalf("data after reset = %+v", data)
	}
}
