// Package customize drives the logo customization flow that follows a
// completed product or bundle selection. The flow is a strict forward/back
// state machine; data entered in a step survives backing out of it.
package customize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/threadline/storefront/internal/domain"
)

// Step identifies one screen of the customization flow.
type Step string

const (
	StepMethodSelect   Step = "method_select"
	StepPositionSelect Step = "position_select"
	StepLogoTypeChoice Step = "logo_type_choice"
	StepTextDetails    Step = "text_details"
	StepUploadDetails  Step = "upload_details"
	StepFinish         Step = "finish"
)

// LogoType distinguishes the two detail branches of the flow.
type LogoType string

const (
	LogoTypeText   LogoType = "text"
	LogoTypeUpload LogoType = "upload"
)

var (
	// ErrInvalidStep is returned when an input arrives for a step the flow is not on.
	ErrInvalidStep = errors.New("customize: input does not match the current step")
	// ErrInvalidMethod is returned for methods outside embroidery and print.
	ErrInvalidMethod = errors.New("customize: unknown decoration method")
	// ErrInvalidPosition is returned for placements outside the seven fixed positions.
	ErrInvalidPosition = errors.New("customize: unknown logo position")
	// ErrInvalidLogoType is returned for logo types outside text and upload.
	ErrInvalidLogoType = errors.New("customize: unknown logo type")
	// ErrIncomplete is returned when Finish is attempted without the required details.
	ErrIncomplete = errors.New("customize: required details are missing")
	// ErrAtStart is returned when Back is called on the first step.
	ErrAtStart = errors.New("customize: already at the first step")
)

// textPolicy strips all markup from free-text fields before storage. The text
// line ends up embroidered and echoed back in cart payloads, so it must never
// carry HTML.
var textPolicy = bluemonday.StrictPolicy()

// Customization is the finished flow output consumed by the cart submitter.
type Customization struct {
	Method   domain.LogoMethod
	Position string
	LogoType LogoType

	// Text branch.
	TextLine string
	Font     string
	Notes    string

	// Upload branch. Exactly one of the two is set when LogoType is upload:
	// a pending file reference for a new upload, or a previous logo URL.
	UploadRef       string
	PreviousLogoURL string
}

// NewUpload reports whether finishing this customization uploads a new logo,
// which is what triggers the one-time setup fee.
func (c Customization) NewUpload() bool {
	return c.LogoType == LogoTypeUpload && c.UploadRef != ""
}

// Flow is the per-session customization state machine.
type Flow struct {
	step Step
	data Customization
}

// NewFlow starts a flow at the method selection step.
func NewFlow() *Flow {
	return &Flow{step: StepMethodSelect}
}

// Step returns the current step.
func (f *Flow) Step() Step {
	return f.step
}

// Data returns the entered details so far.
func (f *Flow) Data() Customization {
	return f.data
}

// SelectMethod records the decoration method and advances to position selection.
func (f *Flow) SelectMethod(method domain.LogoMethod) error {
	if f.step != StepMethodSelect {
		return fmt.Errorf("%w: at %s", ErrInvalidStep, f.step)
	}
	switch method {
	case domain.MethodEmbroidery, domain.MethodPrint:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMethod, method)
	}
	f.data.Method = method
	f.step = StepPositionSelect
	return nil
}

// SelectPosition records the placement and advances to the logo type choice.
func (f *Flow) SelectPosition(position string) error {
	if f.step != StepPositionSelect {
		return fmt.Errorf("%w: at %s", ErrInvalidStep, f.step)
	}
	position = strings.TrimSpace(position)
	if !domain.ValidPosition(position) {
		return fmt.Errorf("%w: %q", ErrInvalidPosition, position)
	}
	f.data.Position = position
	f.step = StepLogoTypeChoice
	return nil
}

// ChooseLogoType branches the flow into the text or upload details step.
func (f *Flow) ChooseLogoType(t LogoType) error {
	if f.step != StepLogoTypeChoice {
		return fmt.Errorf("%w: at %s", ErrInvalidStep, f.step)
	}
	switch t {
	case LogoTypeText:
		f.step = StepTextDetails
	case LogoTypeUpload:
		f.step = StepUploadDetails
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogoType, t)
	}
	f.data.LogoType = t
	return nil
}

// SetTextDetails stores the text branch fields. The text line is required for
// Finish; font and notes are optional. All three are sanitized.
func (f *Flow) SetTextDetails(textLine, font, notes string) error {
	if f.step != StepTextDetails {
		return fmt.Errorf("%w: at %s", ErrInvalidStep, f.step)
	}
	f.data.TextLine = strings.TrimSpace(textPolicy.Sanitize(textLine))
	f.data.Font = strings.TrimSpace(textPolicy.Sanitize(font))
	f.data.Notes = strings.TrimSpace(textPolicy.Sanitize(notes))
	return nil
}

// SetUploadRef stores the pending file reference for a new logo upload and
// clears any previous-logo choice.
func (f *Flow) SetUploadRef(ref string) error {
	if f.step != StepUploadDetails {
		return fmt.Errorf("%w: at %s", ErrInvalidStep, f.step)
	}
	f.data.UploadRef = strings.TrimSpace(ref)
	f.data.PreviousLogoURL = ""
	return nil
}

// SetPreviousLogo stores a previous logo URL to reuse and clears any pending
// upload. Reuse skips the setup fee.
func (f *Flow) SetPreviousLogo(url string) error {
	if f.step != StepUploadDetails {
		return fmt.Errorf("%w: at %s", ErrInvalidStep, f.step)
	}
	f.data.PreviousLogoURL = strings.TrimSpace(url)
	f.data.UploadRef = ""
	return nil
}

// Finish validates the branch details and moves the flow to its terminal step,
// returning the completed customization.
func (f *Flow) Finish() (Customization, error) {
	switch f.step {
	case StepTextDetails:
		if f.data.TextLine == "" {
			return Customization{}, fmt.Errorf("%w: text line is empty", ErrIncomplete)
		}
	case StepUploadDetails:
		if f.data.UploadRef == "" && f.data.PreviousLogoURL == "" {
			return Customization{}, fmt.Errorf("%w: no file selected and no previous logo chosen", ErrIncomplete)
		}
	default:
		return Customization{}, fmt.Errorf("%w: at %s", ErrInvalidStep, f.step)
	}
	f.step = StepFinish
	return f.data, nil
}

// Back returns to the immediately preceding step. Entered data is preserved,
// so re-advancing does not force the user to repeat inputs.
func (f *Flow) Back() error {
	switch f.step {
	case StepMethodSelect:
		return ErrAtStart
	case StepPositionSelect:
		f.step = StepMethodSelect
	case StepLogoTypeChoice:
		f.step = StepPositionSelect
	case StepTextDetails, StepUploadDetails:
		f.step = StepLogoTypeChoice
	case StepFinish:
		if f.data.LogoType == LogoTypeText {
			f.step = StepTextDetails
		} else {
			f.step = StepUploadDetails
		}
	}
	return nil
}

// Reset discards all entered data and restarts at method selection.
func (f *Flow) Reset() {
	f.step = StepMethodSelect
	f.data = Customization{}
}
