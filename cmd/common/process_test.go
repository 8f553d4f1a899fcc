package common_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"fjacquet/pdf-ledger/cmd/common"
	"fjacquet/pdf-ledger/internal/logging"
	"fjacquet/pdf-ledger/internal/models"
)

// MockFullParser implements parser.FullParser for testing
type MockFullParser struct {
	mock.Mock
}

func (m *MockFullParser) Parse(ctx context.Context, r io.Reader) (*models.Ledger, error) {
	args := m.Called(ctx, r)
	ledger, _ := args.Get(0).(*models.Ledger)
	return ledger, args.Error(1)
}

func (m *MockFullParser) ConvertToCSV(ctx context.Context, inputFile, outputFile string) error {
	args := m.Called(ctx, inputFile, outputFile)
	return args.Error(0)
}

func (m *MockFullParser) ValidateFormat(ctx context.Context, file string) (bool, error) {
	args := m.Called(ctx, file)
	return args.Bool(0), args.Error(1)
}

func (m *MockFullParser) SetLogger(logger logging.Logger) {
	m.Called(logger)
}

func TestProcessFile(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		validate     bool
		valid        bool
		validateErr  error
		convertErr   error
		expectErr    error
		expectMsg    string
		expectRun    bool
		validateCall bool
	}{
		{
			name:      "converts without validation",
			expectRun: true,
		},
		{
			name:         "validates then converts",
			validate:     true,
			valid:        true,
			expectRun:    true,
			validateCall: true,
		},
		{
			name:         "invalid format stops before conversion",
			validate:     true,
			valid:        false,
			expectErr:    common.ErrInvalidFormat,
			validateCall: true,
		},
		{
			name:         "validation error",
			validate:     true,
			validateErr:  errors.New("permission denied"),
			expectMsg:    "error validating file",
			validateCall: true,
		},
		{
			name:       "conversion error",
			convertErr: errors.New("disk full"),
			expectMsg:  "error converting to CSV",
			expectRun:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &MockFullParser{}
			log := logging.NewMockLogger()
			p.On("SetLogger", log).Return()
			if tt.validateCall {
				p.On("ValidateFormat", ctx, "in.pdf").Return(tt.valid, tt.validateErr)
			}
			if tt.expectRun {
				p.On("ConvertToCSV", ctx, "in.pdf", "out.csv").Return(tt.convertErr)
			}

			err := common.ProcessFile(ctx, p, "in.pdf", "out.csv", tt.validate, log)

			switch {
			case tt.expectErr != nil:
				assert.ErrorIs(t, err, tt.expectErr)
			case tt.expectMsg != "":
				assert.ErrorContains(t, err, tt.expectMsg)
			default:
				assert.NoError(t, err)
				assert.True(t, log.HasEntry("INFO", "Conversion completed successfully!"))
			}
			p.AssertExpectations(t)
			if !tt.expectRun {
				p.AssertNotCalled(t, "ConvertToCSV", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}
