// message_service.go
//
// DD Property listing API
// Copyright (c) 2026 DD Property Co., Ltd.
//
// This file is part of ddproperty-api.
// ddproperty-api is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// ddproperty-api is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with ddproperty-api.
// If not, see <https://www.gnu.org/licenses/>.

package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ddproperty/ddproperty-api/internal/models"
	"github.com/ddproperty/ddproperty-api/internal/query"
	"github.com/ddproperty/ddproperty-api/internal/repository"
	"github.com/ddproperty/ddproperty-api/internal/types"
	"go.uber.org/zap"
)

const defaultMessageLimit = 20

var phonePattern = regexp.MustCompile(`^[0-9]{9,10}$`)

// MessageInput is an inquiry as submitted from a listing page.
type MessageInput struct {
	Name       string        `json:"name"`
	Email      string        `json:"email"`
	Phone      string        `json:"phone"`
	LineID     string        `json:"lineId"`
	Message    string        `json:"message"`
	PropertyID types.FlexInt `json:"propertyId"`
}

// MessageService handles inquiries and their pipeline status.
type MessageService struct {
	messages   *repository.MessageRepository
	properties *repository.PropertyRepository
	logger     *zap.Logger
}

func NewMessageService(messages *repository.MessageRepository, properties *repository.PropertyRepository, logger *zap.Logger) *MessageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageService{messages: messages, properties: properties, logger: logger}
}

// Create stores a public inquiry.
func (s *MessageService) Create(ctx context.Context, in MessageInput) (*models.Message, error) {
	name := strings.TrimSpace(in.Name)
	phone := strings.TrimSpace(in.Phone)
	if name == "" || phone == "" || !in.PropertyID.Set {
		return nil, types.BadRequest("Name, phone and propertyId are required")
	}
	if !phonePattern.MatchString(phone) {
		return nil, types.BadRequest("Phone number must be 9 or 10 digits")
	}
	if in.PropertyID.Value <= 0 {
		return nil, types.BadRequest("Invalid propertyId")
	}
	propertyID := uint(in.PropertyID.Value)

	exists, err := s.properties.Exists(ctx, propertyID)
	if err != nil {
		return nil, types.FromStorage(err, "Property")
	}
	if !exists {
		return nil, types.NotFound(fmt.Sprintf("Property with ID %d not found", propertyID))
	}

	m := &models.Message{
		Name:       name,
		Email:      strings.TrimSpace(in.Email),
		Phone:      phone,
		LineID:     strings.TrimSpace(in.LineID),
		Message:    in.Message,
		PropertyID: propertyID,
	}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, types.FromStorage(err, "Message")
	}
	s.logger.Info("inquiry received", zap.Uint("message_id", m.ID), zap.Uint("property_id", propertyID))
	return m, nil
}

// List pages through every inquiry. Administrators only.
func (s *MessageService) List(ctx context.Context, actor Actor, page, limit int) (*query.Page[models.Message], error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.page(ctx, nil, page, limit)
}

// ListForUser pages through the inquiries about the actor's properties.
func (s *MessageService) ListForUser(ctx context.Context, actor Actor, page, limit int) (*query.Page[models.Message], error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	ids, err := s.properties.IDsByUser(ctx, actor.ID)
	if err != nil {
		return nil, types.FromStorage(err, "Properties")
	}
	if ids == nil {
		ids = []uint{}
	}
	return s.page(ctx, ids, page, limit)
}

// ByProperty lists the inquiries of one property for its owner or an admin.
func (s *MessageService) ByProperty(ctx context.Context, actor Actor, propertyID uint) ([]models.Message, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	owner, err := s.properties.OwnerOf(ctx, propertyID)
	if err != nil {
		return nil, types.FromStorage(err, fmt.Sprintf("Property with ID %d", propertyID))
	}
	if !actor.CanManage(owner) {
		return nil, types.Forbidden("You are not authorized to view these messages")
	}
	rows, err := s.messages.ByProperty(ctx, propertyID)
	if err != nil {
		return nil, types.FromStorage(err, "Messages")
	}
	return nonNil(rows), nil
}

// UpdateStatus moves an inquiry along the pipeline.
func (s *MessageService) UpdateStatus(ctx context.Context, actor Actor, id uint, status string) (*models.Message, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	status = strings.ToUpper(strings.TrimSpace(status))
	if !models.ValidMessageStatus(status) {
		return nil, types.BadRequest("Invalid status. Must be one of: " + strings.Join(models.MessageStatuses, ", "))
	}

	current, err := s.messages.FindByID(ctx, id)
	if err != nil {
		return nil, types.FromStorage(err, fmt.Sprintf("Message with ID %d", id))
	}
	if current.Property == nil || !actor.CanManage(current.Property.UserID) {
		return nil, types.Forbidden("You are not authorized to update this message")
	}

	m, err := s.messages.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, types.FromStorage(err, fmt.Sprintf("Message with ID %d", id))
	}
	return m, nil
}

func (s *MessageService) page(ctx context.Context, propertyIDs []uint, page, limit int) (*query.Page[models.Message], error) {
	if page < 1 {
		page = query.DefaultPage
	}
	if limit < 1 {
		limit = defaultMessageLimit
	}
	if limit > query.MaxLimit {
		limit = query.MaxLimit
	}
	rows, total, err := s.messages.FindAll(ctx, propertyIDs, (page-1)*limit, limit)
	if err != nil {
		return nil, types.FromStorage(err, "Messages")
	}
	return &query.Page[models.Message]{Data: nonNil(rows), Meta: query.NewMeta(total, page, limit)}, nil
}
