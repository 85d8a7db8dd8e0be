package service

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/mock/gomock"

	"safereturn/internal/notifications/mocks"
	notificationModels "safereturn/internal/notifications/models"
	id "safereturn/pkg/domain"
	dErrors "safereturn/pkg/domain-errors"
)

func (s *SubmitSuite) TestSendMessage() {
	s.Run("unassigned profile goes to the pool", func() {
		p := s.enroll()
		n, err := s.service.SendMessage(s.ctx, p.ID, "", "  need help with rent  ")
		s.Require().NoError(err)
		s.Equal(notificationModels.WorkerPool(), n.Recipient)
		s.Equal("Message from Khalid A. (general): need help with rent", n.Message)
		s.Equal("/profiles/"+p.ID.String(), n.Link)

		pool, err := s.notifications.ListByRecipient(s.ctx, notificationModels.WorkerPool(), false)
		s.Require().NoError(err)
		s.Contains(pool, n)
	})

	s.Run("assigned worker receives it", func() {
		p := s.enroll()
		worker := id.WorkerID(uuid.New())
		_, err := s.service.AssignCaseWorker(s.ctx, p.ID, worker)
		s.Require().NoError(err)

		n, err := s.service.SendMessage(s.ctx, p.ID, "job", "interview on Tuesday")
		s.Require().NoError(err)
		s.Equal(notificationModels.CaseWorker(worker), n.Recipient)
		s.Contains(n.Message, "(job)")
	})

	s.Run("closed plans can still message", func() {
		p := s.enroll()
		_, err := s.service.TerminatePlan(s.ctx, p.ID, "moved abroad")
		s.Require().NoError(err)

		_, err = s.service.SendMessage(s.ctx, p.ID, "family", "thank you")
		s.NoError(err)
	})
}

func (s *SubmitSuite) TestSendMessageRejectsBadInput() {
	p := s.enroll()

	_, err := s.service.SendMessage(s.ctx, p.ID, "general", "   ")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.service.SendMessage(s.ctx, p.ID, "general", strings.Repeat("a", 2001))
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.service.SendMessage(s.ctx, p.ID, "legal", "hello")
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidEnum))

	_, err = s.service.SendMessage(s.ctx, id.NewProfileID(), "general", "hello")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	pool, err := s.notifications.ListByRecipient(s.ctx, notificationModels.WorkerPool(), false)
	s.Require().NoError(err)
	s.Empty(pool)
}

func (s *SubmitSuite) TestSendMessageStoreFailure() {
	ctrl := gomock.NewController(s.T())
	failing := mocks.NewMockStore(ctrl)
	failing.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("notifications table locked"))
	svc := s.newService(s.checkins, failing)

	p := s.enroll()
	_, err := svc.SendMessage(s.ctx, p.ID, "health", "clinic closed")
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}
