package drive

import (
	"errors"
	"fmt"

	"dropzone/internal/config"
	"dropzone/internal/domain"
	models "dropzone/internal/domain/models/drive"
	driveSvc "dropzone/internal/domain/services/drive"
	"dropzone/internal/utils"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// nameRule applies utils.ValidateName to string and *string fields.
// Emptiness is left to validation.Required.
func nameRule(maxLength int) validation.Rule {
	return validation.By(func(value interface{}) error {
		v, isNil := validation.Indirect(value)
		if isNil {
			return nil
		}
		s, ok := v.(string)
		if !ok {
			return errors.New("must be a string")
		}
		if s == "" {
			return nil
		}
		return utils.ValidateName(s, maxLength)
	})
}

// invalid wraps a validation failure as an InvalidArgument error
func invalid(err error) error {
	return &domain.InvalidArgumentError{Message: fmt.Sprintf("%s: %v", domain.ErrValidation, err)}
}

func validateCreateFolderRequest(req *driveSvc.CreateFolderRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxFolderNameLength),
			nameRule(config.MaxFolderNameLength),
		),
		validation.Field(&req.Color, validation.Length(0, 32)),
		validation.Field(&req.Icon, validation.Length(0, 64)),
	)
	if err != nil {
		return invalid(err)
	}
	return nil
}

func validateUpdateFolderRequest(req *driveSvc.UpdateFolderRequest) error {
	// At least one field must be provided
	if req.Name == nil && req.Color == nil && req.Icon == nil {
		return invalid(errors.New("at least one field must be provided"))
	}

	err := validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.NilOrNotEmpty,
			nameRule(config.MaxFolderNameLength),
		),
		validation.Field(&req.Color, validation.Length(0, 32)),
		validation.Field(&req.Icon, validation.Length(0, 64)),
	)
	if err != nil {
		return invalid(err)
	}
	return nil
}

func validateCreateFileRequest(req *driveSvc.CreateFileRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxFileNameLength),
			nameRule(config.MaxFileNameLength),
		),
		validation.Field(&req.Size, validation.Min(int64(0))),
		validation.Field(&req.Status, validation.In(
			models.FileStatusUploading,
			models.FileStatusCompleted,
			models.FileStatusFailed,
		)),
	)
	if err != nil {
		return invalid(err)
	}
	return nil
}

func validateUpdateFileRequest(req *driveSvc.UpdateFileRequest) error {
	if req.Name == nil && req.Status == nil && req.Progress == nil && !req.FolderID.Present {
		return invalid(errors.New("at least one field must be provided"))
	}

	err := validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.NilOrNotEmpty,
			validation.Length(1, config.MaxFileNameLength),
			nameRule(config.MaxFileNameLength),
		),
		validation.Field(&req.Status, validation.In(
			models.FileStatusUploading,
			models.FileStatusCompleted,
			models.FileStatusFailed,
		)),
	)
	if err != nil {
		return invalid(err)
	}
	return nil
}

func validateStartUploadRequest(req *driveSvc.StartUploadRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Files,
			validation.Required,
			validation.Length(1, config.MaxUploadBatch),
		),
	)
	if err != nil {
		return invalid(err)
	}
	return nil
}
