package errors_test

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/nathoo/quizshot/errors"
)

type ErrorsTestSuite struct {
	suite.Suite
}

func TestErrorsSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}

func (s *ErrorsTestSuite) TestNewError() {
	testCases := []struct {
		name     string
		code     errors.Code
		message  string
		expected string
	}{
		{
			name:     "not found",
			code:     errors.CodeNotFound,
			message:  "rankings file missing",
			expected: "NOT_FOUND: rankings file missing",
		},
		{
			name:     "malformed",
			code:     errors.CodeMalformedContent,
			message:  "bad json",
			expected: "MALFORMED_CONTENT: bad json",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			err := errors.New(tc.code, tc.message)
			s.Equal(tc.expected, err.Error())
			s.Equal(tc.code, err.Code)
		})
	}
}

func (s *ErrorsTestSuite) TestWrapKeepsCode() {
	inner := errors.MalformedContent("unexpected token")
	outer := errors.Wrap(inner, "load bank")

	s.Equal(errors.CodeMalformedContent, outer.Code)
	s.True(errors.IsMalformed(outer))
	s.True(stderrors.Is(outer, inner))
	s.Contains(outer.Error(), "unexpected token")
}

func (s *ErrorsTestSuite) TestWrapPlainErrorIsInternal() {
	err := errors.Wrap(fmt.Errorf("boom"), "save")
	s.Equal(errors.CodeInternal, err.Code)
	s.Nil(errors.Wrap(nil, "save"))
}

func (s *ErrorsTestSuite) TestFromFS() {
	_, err := os.ReadFile(filepath.Join(s.T().TempDir(), "missing.json"))
	s.Require().Error(err)

	coded := errors.FromFS(err, "read rankings")
	s.True(errors.IsNotFound(coded))
	s.True(stderrors.Is(coded, fs.ErrNotExist))

	s.True(errors.IsPermissionDenied(errors.FromFS(fs.ErrPermission, "open")))
	s.Equal(errors.CodeInternal, errors.CodeOf(errors.FromFS(fmt.Errorf("disk on fire"), "open")))
	s.Nil(errors.FromFS(nil, "open"))
}

func (s *ErrorsTestSuite) TestWithMeta() {
	err := errors.NotFoundf("source %d", 4).WithMeta("index", 4)
	s.Equal(4, err.Meta["index"])
	s.Equal("NOT_FOUND: source 4", err.Error())
}

func (s *ErrorsTestSuite) TestCodeOfUncoded() {
	s.Equal(errors.CodeInternal, errors.CodeOf(fmt.Errorf("plain")))
	s.False(errors.IsNotFound(nil))
}
