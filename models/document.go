package models

import (
	"context"
	"errors"

	"bitbucket.org/lanefocus/freight_backend/config"
	"bitbucket.org/lanefocus/freight_backend/utils"
	"gorm.io/gorm"
)

type Document struct {
	ID            int    `gorm:"primary_key" json:"id"`
	DocumentUrl   string `json:"document_url"`
	DocumentName  string `gorm:"size:255" json:"document_name"`
	ReferenceType string `json:"reference_type"`
	ReferenceID   int    `json:"reference_id"`
}

type NewDocument struct {
	ID           int    `json:"id"`
	IsDeleted    bool   `json:"is_deleted"`
	DocumentUrl  string `json:"document_url"`
	DocumentName string `json:"document_name"`
}

func mapNewDocuments(ctx context.Context, input []*NewDocument, referenceType string, referenceId int) ([]*Document, error) {
	var documents []*Document
	for _, i := range input {
		d, err := i.MapInput(ctx, referenceType, referenceId)
		if err != nil {
			return nil, err
		}
		documents = append(documents, d)
	}
	return documents, nil
}

// for create
func (input NewDocument) MapInput(ctx context.Context, referenceType string, referenceId int) (*Document, error) {
	exists, err := utils.CheckFileExistInGCS(ctx, input.DocumentUrl)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.New("document does not exist in storage")
	}
	return &Document{
		DocumentUrl:   input.DocumentUrl,
		DocumentName:  input.DocumentName,
		ReferenceType: referenceType,
		ReferenceID:   referenceId,
	}, nil
}

func (d *Document) Delete(tx *gorm.DB, ctx context.Context) error {
	if err := tx.WithContext(ctx).Delete(&d).Error; err != nil {
		return err
	}
	// delete actual file
	if err := utils.DeleteFileFromGCS(ctx, d.DocumentUrl); err != nil {
		return err
	}
	return nil
}

var documentReferenceTables = map[string]string{
	"customers":         "customers",
	"shipments":         "shipments",
	"clearance_records": "clearance_records",
	"invoices":          "invoices",
}

// CreateDocumentFromURL attaches an already-uploaded object to a record. The
// referenced record must belong to the caller's business.
func CreateDocumentFromURL(ctx context.Context, documentURL, documentName, referenceType string, referenceId int) (*Document, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	table, ok := documentReferenceTables[referenceType]
	if !ok {
		return nil, errors.New("unsupported reference type")
	}

	db := config.GetDB()
	var count int64
	if err := db.WithContext(ctx).
		Table(table).
		Where("business_id = ? AND id = ?", businessId, referenceId).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, utils.ErrorRecordNotFound
	}

	exists, err := utils.CheckFileExistInGCS(ctx, documentURL)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.New("document does not exist in storage")
	}

	doc := &Document{
		DocumentUrl:   documentURL,
		DocumentName:  documentName,
		ReferenceType: referenceType,
		ReferenceID:   referenceId,
	}
	if err := db.WithContext(ctx).Create(doc).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

func GetDocument(ctx context.Context, id int) (*Document, error) {

	var result Document
	db := config.GetDB()
	if err := db.WithContext(ctx).First(&result, id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	// Enforce tenant ownership (fail closed) unless explicitly bypassed for admin/internal ops.
	if skip, ok := utils.GetSkipTenantScopeFromContext(ctx); ok && skip {
		return &result, nil
	}
	if isAdmin, ok := utils.GetIsAdminFromContext(ctx); ok && isAdmin {
		return &result, nil
	}

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if result.ReferenceType == "" || result.ReferenceID <= 0 {
		return nil, errors.New("unauthorized")
	}

	// Validate the referenced record belongs to this business_id.
	table, ok := documentReferenceTables[result.ReferenceType]
	if !ok || table == "" {
		// Unknown polymorphic type => deny rather than risk cross-tenant leakage.
		return nil, errors.New("unauthorized")
	}

	var count int64
	if err := db.WithContext(ctx).
		Table(table).
		Where("business_id = ? AND id = ?", businessId, result.ReferenceID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, errors.New("unauthorized")
	}

	return &result, nil
}

type UploadResponse struct {
	FileUrl string `json:"file_url"`
}

// remove a stored file that is not referenced by any document row
func RemoveFile(ctx context.Context, fullUrl string) (*UploadResponse, error) {

	var count int64
	db := config.GetDB()

	if err := db.Model(&Document{}).WithContext(ctx).Where("document_url = ?", fullUrl).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("cannot delete file associated with database")
	}

	// check if the object exists
	objectKey := utils.ExtractObjectKeyFromURL(fullUrl)
	if objectKey == "" {
		return nil, errors.New("invalid url")
	}
	if ok, err := utils.ObjectExistsInGCS(ctx, objectKey); !ok || err != nil {
		return nil, errors.New("object does not exist")
	}

	// delete from cloud
	if err := utils.DeleteFileFromGCS(ctx, fullUrl); err != nil {
		return nil, err
	}

	return &UploadResponse{
		FileUrl: fullUrl,
	}, nil
}

func upsertDocuments(ctx context.Context, tx *gorm.DB, inputDocuments []*NewDocument, referenceType string, referenceId int) ([]*Document, error) {
	var kept []*Document
	for _, input := range inputDocuments {
		if input == nil {
			continue
		}
		// delete flagged existing rows
		if input.ID > 0 && input.IsDeleted {
			var doc Document
			if err := tx.WithContext(ctx).First(&doc, input.ID).Error; err != nil {
				return nil, utils.ErrorRecordNotFound
			}
			if err := doc.Delete(tx, ctx); err != nil {
				return nil, err
			}
			continue
		}
		// keep existing rows untouched
		if input.ID > 0 {
			var doc Document
			if err := tx.WithContext(ctx).First(&doc, input.ID).Error; err != nil {
				return nil, utils.ErrorRecordNotFound
			}
			kept = append(kept, &doc)
			continue
		}
		// create new rows
		doc, err := input.MapInput(ctx, referenceType, referenceId)
		if err != nil {
			return nil, err
		}
		doc.ReferenceID = referenceId
		if err := tx.WithContext(ctx).Create(doc).Error; err != nil {
			return nil, err
		}
		kept = append(kept, doc)
	}
	return kept, nil
}

func deleteDocuments(ctx context.Context, tx *gorm.DB, documents []*Document) error {
	for _, doc := range documents {
		if err := doc.Delete(tx, ctx); err != nil {
			return err
		}
	}
	return nil
}
