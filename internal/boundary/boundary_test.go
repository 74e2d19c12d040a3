package boundary

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckAcceptsWellFormedPayloads(t *testing.T) {
	cases := map[string]string{
		MasterRoleCreate:    `{"mentor_id": 1, "reason": "r", "experience": "e", "planned_classrooms": "p", "qualifications": {"degree": "BMus"}}`,
		MasterRoleDecision:  `{"status": "approved", "admin_notes": "ok"}`,
		StaffCreate:         `{"mentor_id": 1, "classroom_id": 2, "message": "hello"}`,
		StaffDecision:       `{"status": "rejected"}`,
		ResignationCreate:   `{"mentor_id": 1, "classroom_id": 2, "reason": "moving"}`,
		ResignationDecision: `{"status": "approved", "master_notes": "ok"}`,
		EnrollmentCreate:    `{"student_id": 9}`,
		EnrollmentDecision:  `{"status": "active"}`,
	}

	for kind, body := range cases {
		require.NoError(t, Check(kind, []byte(body)), kind)
	}
}

func TestCheckRejectsUnknownFields(t *testing.T) {
	err := Check(StaffCreate, []byte(`{"mentor_id": 1, "classroom_id": 2, "message": "hi", "status": "approved"}`))
	require.Error(t, err, "clients must not smuggle extra fields past the boundary")

	var boundaryErr *Error
	require.ErrorAs(t, err, &boundaryErr)
	require.Equal(t, StaffCreate, boundaryErr.Kind)
}

func TestCheckRejectsWrongTypes(t *testing.T) {
	require.Error(t, Check(EnrollmentCreate, []byte(`{"student_id": "9"}`)))
	require.Error(t, Check(MasterRoleCreate, []byte(`{"mentor_id": 0, "reason": "r", "experience": "e", "planned_classrooms": "p"}`)))
}

func TestCheckRejectsInvalidStatusValues(t *testing.T) {
	require.Error(t, Check(EnrollmentDecision, []byte(`{"status": "approved"}`)), "memberships use active/rejected")
	require.Error(t, Check(StaffDecision, []byte(`{"status": "active"}`)), "requests use approved/rejected")
}

func TestCheckRejectsMalformedJSON(t *testing.T) {
	require.Error(t, Check(StaffCreate, []byte(`{"mentor_id": `)))
}

func TestCheckRejectsMissingRequiredFields(t *testing.T) {
	require.Error(t, Check(ResignationCreate, []byte(`{"mentor_id": 1, "classroom_id": 2}`)))
	require.Error(t, Check(MasterRoleDecision, []byte(`{"admin_notes": "no verdict"}`)))
}
